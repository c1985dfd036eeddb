package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain"
)

// AuthService manages a backend credential pair and hands out valid access
// tokens, refreshing them ahead of expiry. It implements
// soldieriq.TokenProvider.
type AuthService struct {
	client *soldieriq.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiry       time.Time
}

// NewAuthService creates an AuthService with no credential. Call Login or
// Adopt before using it as a token provider.
func NewAuthService(client *soldieriq.Client) *AuthService {
	return &AuthService{client: client}
}

// Login authenticates against the backend and stores the resulting pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*soldieriq.UserInfo, error) {
	pair, err := s.client.Login(ctx, soldieriq.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.adopt(pair)

	info, err := s.client.Me(ctx, pair.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	return info, nil
}

// Adopt installs an externally obtained token pair.
func (s *AuthService) Adopt(pair *soldieriq.TokenPair) {
	s.adopt(pair)
}

func (s *AuthService) adopt(pair *soldieriq.TokenPair) {
	// Refresh 60 seconds ahead of expiry.
	expiry := time.Now().Add(time.Duration(pair.ExpiresIn)*time.Second - 60*time.Second)

	s.mu.Lock()
	s.accessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		s.refreshToken = pair.RefreshToken
	}
	s.expiry = expiry
	s.mu.Unlock()
}

// Token returns a valid access token, refreshing the stored pair when the
// cached one is within its expiry buffer.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.accessToken != "" && time.Now().Before(s.expiry) {
		tok := s.accessToken
		s.mu.RUnlock()
		return tok, nil
	}
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh == "" {
		return "", domain.ErrUnauthenticated
	}

	pair, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	s.adopt(pair)

	slog.Info("access token refreshed")
	return pair.AccessToken, nil
}

// Me returns the profile behind the stored credential.
func (s *AuthService) Me(ctx context.Context) (*soldieriq.UserInfo, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	info, err := s.client.Me(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	return info, nil
}

// Refresh forces a refresh of the stored pair regardless of expiry.
func (s *AuthService) Refresh(ctx context.Context) error {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh == "" {
		return domain.ErrUnauthenticated
	}

	pair, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	s.adopt(pair)
	return nil
}

// Logout revokes the stored pair on the backend and clears it locally.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	access, refresh := s.accessToken, s.refreshToken
	s.accessToken, s.refreshToken = "", ""
	s.expiry = time.Time{}
	s.mu.Unlock()

	if access == "" {
		return nil
	}
	if err := s.client.Logout(ctx, access, refresh); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
