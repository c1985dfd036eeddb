// Package soldieriq provides the HTTP/SSE client for the SoldierIQ backend
// API (auth, document ingestion, model catalog, TAK config, streaming chat).
package soldieriq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/document"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/resilience"
)

// TokenProvider supplies a bearer credential for outbound requests.
// Implementations must return domain.ErrUnauthenticated when no credential
// is available.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for an already-issued bearer token, e.g.
// one forwarded from an incoming request.
type StaticToken string

// Token returns the wrapped token, or domain.ErrUnauthenticated when empty.
func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", domain.ErrUnauthenticated
	}
	return string(t), nil
}

// Client talks to the SoldierIQ backend REST/SSE API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a backend client. The client timeout applies to plain
// REST calls only; chat streams use a separate, timeout-free client because
// a stream legitimately outlives any fixed request deadline.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SetBreaker attaches a circuit breaker to non-streaming HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// --- Auth ---

// LoginRequest carries username/password credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the backend's token response for login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// UserInfo describes the authenticated user.
type UserInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Login exchanges username/password for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var pair TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req, &pair); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &pair, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var pair TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", "", body, &pair); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return &pair, nil
}

// Me returns the user behind the given access token.
func (c *Client) Me(ctx context.Context, token string) (*UserInfo, error) {
	var info UserInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", token, nil, &info); err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	return &info, nil
}

// Logout invalidates a refresh token on the identity provider.
func (c *Client) Logout(ctx context.Context, token, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", token, body, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// --- Documents & folders ---

// listEnvelope is the backend's standard list wrapper.
type listEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
	Count   int  `json:"count"`
}

// ListDocuments returns documents, optionally filtered by folder.
func (c *Client) ListDocuments(ctx context.Context, token string, filter document.ListFilter) ([]document.Document, error) {
	q := url.Values{}
	if filter.FolderName != "" {
		q.Set("folder_name", filter.FolderName)
	}
	if filter.Limit > 0 {
		q.Set("limit", fmt.Sprint(filter.Limit))
	}
	if filter.Skip > 0 {
		q.Set("skip", fmt.Sprint(filter.Skip))
	}
	path := "/api/upload/documents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var env listEnvelope[document.Document]
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &env); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return env.Data, nil
}

// GetDocument returns one document by ID, with a fresh presigned URL.
func (c *Client) GetDocument(ctx context.Context, token, id string) (*document.Document, error) {
	var env struct {
		Success bool              `json:"success"`
		Data    document.Document `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/upload/documents/"+url.PathEscape(id), token, nil, &env); err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &env.Data, nil
}

// DeleteDocument removes a document and its vectors on the backend.
func (c *Client) DeleteDocument(ctx context.Context, token, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/upload/documents/"+url.PathEscape(id), token, nil, nil); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// UploadFile is one file in an upload batch.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadDocuments sends files into a folder as multipart form data.
// Ingestion continues asynchronously on the backend.
func (c *Client) UploadDocuments(ctx context.Context, token, folderName string, files []UploadFile) ([]document.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("folder_name", folderName); err != nil {
		return nil, fmt.Errorf("write folder field: %w", err)
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy file %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload/documents", &buf)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	data, err := c.execute(req)
	if err != nil {
		return nil, fmt.Errorf("upload documents: %w", err)
	}

	var env listEnvelope[document.Document]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal upload response: %w", err)
	}
	return env.Data, nil
}

// IngestYouTube asks the backend to download and ingest a YouTube video.
func (c *Client) IngestYouTube(ctx context.Context, token, youtubeURL, folderName string) (*document.Document, error) {
	body := map[string]string{
		"youtube_url": youtubeURL,
		"folder_name": folderName,
	}
	var env struct {
		Success bool              `json:"success"`
		Data    document.Document `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/upload/youtube", token, body, &env); err != nil {
		return nil, fmt.Errorf("ingest youtube: %w", err)
	}
	return &env.Data, nil
}

// ListFolders returns all folder (knowledge base) names.
func (c *Client) ListFolders(ctx context.Context, token string) ([]string, error) {
	var env listEnvelope[string]
	if err := c.doJSON(ctx, http.MethodGet, "/api/upload/folders", token, nil, &env); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return env.Data, nil
}

// RenameFolder renames a folder across all its documents.
func (c *Client) RenameFolder(ctx context.Context, token, oldName, newName string) error {
	body := map[string]string{"new_name": newName}
	if err := c.doJSON(ctx, http.MethodPut, "/api/upload/folders/"+url.PathEscape(oldName), token, body, nil); err != nil {
		return fmt.Errorf("rename folder %s: %w", oldName, err)
	}
	return nil
}

// DeleteFolder removes a folder and every document in it.
func (c *Client) DeleteFolder(ctx context.Context, token, name string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/upload/folders/"+url.PathEscape(name), token, nil, nil); err != nil {
		return fmt.Errorf("delete folder %s: %w", name, err)
	}
	return nil
}

// ResolveFileURL exchanges an opaque storage key for a presigned,
// time-limited download URL.
func (c *Client) ResolveFileURL(ctx context.Context, token, fileKey string) (string, error) {
	q := url.Values{"file_key": {fileKey}}
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/upload/file-url?"+q.Encode(), token, nil, &resp); err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}
	return resp.URL, nil
}

// --- Models ---

// ListModels returns the chat model catalog.
func (c *Client) ListModels(ctx context.Context, token string) ([]document.Model, error) {
	var env struct {
		Models []document.Model `json:"models"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/models", token, nil, &env); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return env.Models, nil
}

// --- TAK configuration ---

// TAKConfig holds TAK server connection settings for the current user.
type TAKConfig struct {
	Host     string `json:"tak_host"`
	Port     int    `json:"tak_port"`
	Username string `json:"tak_username"`
	Password string `json:"tak_password,omitempty"`
}

// GetTAKConfig returns the stored TAK configuration, or domain.ErrNotFound.
func (c *Client) GetTAKConfig(ctx context.Context, token string) (*TAKConfig, error) {
	var cfg TAKConfig
	if err := c.doJSON(ctx, http.MethodGet, "/api/tak/config", token, nil, &cfg); err != nil {
		return nil, fmt.Errorf("get tak config: %w", err)
	}
	return &cfg, nil
}

// SetTAKConfig stores TAK server credentials.
func (c *Client) SetTAKConfig(ctx context.Context, token string, cfg TAKConfig) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/tak/config", token, cfg, nil); err != nil {
		return fmt.Errorf("set tak config: %w", err)
	}
	return nil
}

// DeleteTAKConfig removes the stored TAK configuration.
func (c *Client) DeleteTAKConfig(ctx context.Context, token string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/tak/config", token, nil, nil); err != nil {
		return fmt.Errorf("delete tak config: %w", err)
	}
	return nil
}

// --- Plumbing ---

// doJSON performs a JSON request/response round trip. A nil out discards
// the response body.
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var bodyReader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	data, err := c.execute(req)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// execute runs the request through the breaker (when configured) and maps
// non-2xx responses to domain.ErrRequestRejected with the backend's detail.
func (c *Client) execute(req *http.Request) ([]byte, error) {
	var result []byte
	call := func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return rejectionError(resp.StatusCode, data)
		}
		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}

// rejectionError maps a non-2xx backend response to a domain error. 404
// becomes domain.ErrNotFound (the backend answers 404 for a missing TAK
// config or document); everything else is domain.ErrRequestRejected
// carrying the backend's detail message when the error body has one.
func rejectionError(status int, body []byte) error {
	sentinel := domain.ErrRequestRejected
	if status == http.StatusNotFound {
		sentinel = domain.ErrNotFound
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return fmt.Errorf("%w: HTTP %d: %s", sentinel, status, payload.Detail)
	}
	return fmt.Errorf("%w: HTTP %d", sentinel, status)
}
