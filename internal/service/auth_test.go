package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain"
)

func authBackend(t *testing.T, refreshes *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"token_type":    "bearer",
				"expires_in":    3600,
			})
		case "/api/auth/refresh":
			if refreshes != nil {
				refreshes.Add(1)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "access-2",
				"token_type":   "bearer",
				"expires_in":   3600,
			})
		case "/api/auth/me":
			_ = json.NewEncoder(w).Encode(map[string]any{"username": "soldier1"})
		case "/api/auth/logout":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestAuthLoginAndToken(t *testing.T) {
	srv := authBackend(t, nil)
	defer srv.Close()

	svc := NewAuthService(soldieriq.NewClient(srv.URL))
	info, err := svc.Login(context.Background(), "soldier1", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if info.Username != "soldier1" {
		t.Fatalf("unexpected user: %+v", info)
	}

	tok, err := svc.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "access-1" {
		t.Fatalf("expected cached access token, got %q", tok)
	}
}

func TestAuthTokenRefreshesExpiredPair(t *testing.T) {
	var refreshes atomic.Int32
	srv := authBackend(t, &refreshes)
	defer srv.Close()

	svc := NewAuthService(soldieriq.NewClient(srv.URL))
	// ExpiresIn below the refresh buffer forces an immediate refresh.
	svc.Adopt(&soldieriq.TokenPair{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresIn:    1,
	})

	tok, err := svc.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "access-2" {
		t.Fatalf("expected refreshed token, got %q", tok)
	}
	if refreshes.Load() != 1 {
		t.Fatalf("expected 1 refresh call, got %d", refreshes.Load())
	}

	// The refresh token survives a response that omits it.
	if _, err := svc.Token(context.Background()); err != nil {
		t.Fatalf("Token after refresh: %v", err)
	}
}

func TestAuthTokenWithoutCredential(t *testing.T) {
	svc := NewAuthService(soldieriq.NewClient("http://unused"))
	_, err := svc.Token(context.Background())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthLogoutClearsCredential(t *testing.T) {
	srv := authBackend(t, nil)
	defer srv.Close()

	svc := NewAuthService(soldieriq.NewClient(srv.URL))
	if _, err := svc.Login(context.Background(), "soldier1", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Token(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}
}

func TestAuthMe(t *testing.T) {
	srv := authBackend(t, nil)
	defer srv.Close()

	svc := NewAuthService(soldieriq.NewClient(srv.URL))
	if _, err := svc.Me(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("Me without credential: err = %v, want ErrUnauthenticated", err)
	}

	if _, err := svc.Login(context.Background(), "soldier1", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	info, err := svc.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if info.Username != "soldier1" {
		t.Fatalf("unexpected user: %+v", info)
	}
}

func TestAuthForcedRefresh(t *testing.T) {
	var refreshes atomic.Int32
	srv := authBackend(t, &refreshes)
	defer srv.Close()

	svc := NewAuthService(soldieriq.NewClient(srv.URL))
	if err := svc.Refresh(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("Refresh without credential: err = %v, want ErrUnauthenticated", err)
	}

	svc.Adopt(&soldieriq.TokenPair{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
	})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("refresh calls = %d, want 1", got)
	}

	tok, err := svc.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "access-2" {
		t.Fatalf("token = %q, want refreshed access-2", tok)
	}
}
