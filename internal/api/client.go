// Package api is the typed HTTP client for the AI Legal Shield analysis
// backend. The backend is an opaque collaborator: this layer does the wire
// plumbing (multipart uploads, JSON bodies, error detail extraction) and
// nothing else. No retries, no caching, no local persistence.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// APIError is a backend-reported failure: non-2xx with a JSON detail field.
// Detail is shown to the user verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Client talks to the analysis backend. The base URL can be swapped at
// runtime (config hot reload); requests already in flight keep the address
// they started with.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (used by tests and by
// callers that need a custom timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the transport timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a backend client. An empty baseURL falls back to
// DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL re-points the client at a different backend. An empty value
// falls back to DefaultBaseURL.
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c.mu.Lock()
	c.baseURL = baseURL
	c.mu.Unlock()
}

// SetTimeout replaces the transport timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.httpClient.Timeout = d
	c.mu.Unlock()
}

// Upload sends a contract file for analysis. The multipart form carries the
// file plus the user's identity, display name, and the contract type; the
// backend replies with a complete AnalysisResult.
func (c *Client) Upload(ctx context.Context, path, userID, userName, contractType string) (*AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contract file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read contract file: %w", err)
	}
	_ = mw.WriteField("userId", userID)
	_ = mw.WriteField("userName", userName)
	_ = mw.WriteField("contract_type", contractType)
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result AnalysisResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadContract sends a file to the v1 upload variant, which only stores
// the document and acknowledges receipt.
func (c *Client) UploadContract(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contract file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read contract file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/api/v1/upload/contract", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat sends one chat turn with the full context accumulated so far.
func (c *Client) Chat(ctx context.Context, chatReq *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result ChatResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChatHistory fetches the user's saved sessions, ordered by recency.
func (c *Client) ChatHistory(ctx context.Context, userID string) ([]ChatHistoryItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/chat-history/%s", c.BaseURL(), url.PathEscape(userID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result chatHistoryResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.ChatHistory, nil
}

// ChatSession loads one full saved session, including its messages and the
// contract context needed to resume chatting.
func (c *Client) ChatSession(ctx context.Context, chatID, userID string) (*ChatSession, error) {
	u := fmt.Sprintf("%s/chat-session/%s?user_id=%s",
		c.BaseURL(), url.PathEscape(chatID), url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result chatSessionResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result.ChatSession, nil
}

// DeleteChatSession removes a saved session. A 2xx response is success; no
// body is required.
func (c *Client) DeleteChatSession(ctx context.Context, chatID, userID string) error {
	u := fmt.Sprintf("%s/chat-session/%s?user_id=%s",
		c.BaseURL(), url.PathEscape(chatID), url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, nil)
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result HealthStatus
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do executes a request and decodes the response into out (when non-nil).
// Non-2xx responses become an *APIError carrying the backend's detail field
// when one is present.
func (c *Client) do(req *http.Request, out any) error {
	c.mu.RLock()
	hc := *c.httpClient // snapshot so SetTimeout never races an in-flight call
	c.mu.RUnlock()

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(body),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// extractDetail pulls the detail string out of an error body. The backend
// reports failures as {"detail": "..."}.
func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
