// Package session implements the client-side state machine behind the
// analyze page: file selection, upload, the chat transcript, and the saved
// session history list. All state lives in memory for the lifetime of the
// controller; nothing is persisted locally.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legalshield/internal/api"
	"legalshield/internal/logging"
)

// Phase is the chat flow state. Only one chat request may be in flight at a
// time; the upload and history flags are independent of it.
type Phase int

const (
	PhaseIdle    Phase = iota // no analysis yet, chat unreachable
	PhaseReady                // analysis present, awaiting input
	PhaseSending              // one chat request in flight
)

// SendState tags each transcript message so a failed send can be marked
// visually instead of being rolled back.
type SendState int

const (
	SendConfirmed SendState = iota
	SendPending
	SendFailed
)

// Message is one transcript entry, owned by the controller and handed to
// views read-only.
type Message struct {
	ID      string
	Role    string // "user" or "assistant"
	Content string
	Time    time.Time
	State   SendState
}

// Wire converts a message to its backend representation. Timestamps are
// client-assigned at creation time, RFC 3339.
func (m Message) Wire() api.ChatMessage {
	return api.ChatMessage{
		Role:      m.Role,
		Content:   m.Content,
		Timestamp: m.Time.UTC().Format(time.RFC3339),
	}
}

// ContractType values accepted by the backend.
var ContractTypes = []string{"general", "lease", "employment", "nda"}

// allowedExtensions is advisory only; the backend is the authority on
// acceptable formats.
var allowedExtensions = map[string]bool{
	".txt": true, ".pdf": true, ".docx": true, ".doc": true,
}

// Guard errors returned before any network call is made.
var (
	ErrNoFile     = errors.New("no file selected")
	ErrBadFile    = errors.New("unsupported file type")
	ErrEmptyInput = errors.New("empty chat input")
	ErrNoAnalysis = errors.New("no analysis loaded")
	ErrBusy       = errors.New("request already in flight")
)

// Controller owns all page state and orchestrates backend calls. Methods
// are safe for concurrent use; the TUI invokes the network methods from
// command goroutines while the update loop reads snapshots.
type Controller struct {
	mu     sync.Mutex
	client *api.Client
	log    *logging.Logger

	userID   string
	userName string

	// upload flow
	filePath     string
	contractType string
	uploading    bool
	status       string

	// analysis + chat flow
	analysis *api.AnalysisResult
	messages []Message
	sending  bool
	chatID   string

	// history list
	history        []api.ChatHistoryItem
	historyLoading bool
	historyErr     string
}

// New creates a controller for one user against the given backend client.
func New(client *api.Client, userID, userName string) *Controller {
	return &Controller{
		client:       client,
		log:          logging.Get(logging.CategorySession),
		userID:       userID,
		userName:     userName,
		contractType: "general",
	}
}

// =============================================================================
// UPLOAD / ANALYZE FLOW
// =============================================================================

// SelectFile records the upload selection. The extension filter is advisory;
// a rejected selection clears the current file and sets the status message
// without touching the network. Selecting a file discards the previous
// analysis, since analysis and transcript are coupled 1:1 per upload.
func (c *Controller) SelectFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		c.filePath = ""
		c.status = "Please select a .txt, .pdf, or .docx file"
		return ErrBadFile
	}
	c.filePath = path
	c.status = ""
	c.analysis = nil
	c.log.Debug("file selected: %s", filepath.Base(path))
	return nil
}

// SetContractType sets the contract type for the next upload. Unknown values
// fall back to "general".
func (c *Controller) SetContractType(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, known := range ContractTypes {
		if t == known {
			c.contractType = t
			return
		}
	}
	c.contractType = "general"
}

// Upload submits the selected file for analysis. Client-side validation
// failures never reach the network. On success the previous analysis is
// replaced wholesale and the transcript is reset; on failure no partial
// result is kept and the controller is immediately ready for a retry.
func (c *Controller) Upload(ctx context.Context) error {
	c.mu.Lock()
	if c.filePath == "" {
		c.status = "Please select a file first"
		c.mu.Unlock()
		return ErrNoFile
	}
	if c.uploading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.uploading = true
	c.status = "Analyzing contract..."
	c.analysis = nil
	path, ctype := c.filePath, c.contractType
	c.mu.Unlock()

	result, err := c.client.Upload(ctx, path, c.userID, c.userName, ctype)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false
	if err != nil {
		c.analysis = nil
		c.status = fmt.Sprintf("Analysis failed: %s", errorDetail(err))
		c.log.Warn("upload failed: %v", err)
		return err
	}

	c.analysis = result
	c.chatID = result.ChatID
	c.messages = nil // new upload always resets the transcript
	c.status = "File analyzed successfully!"
	c.log.Info("analysis received: score=%.1f clauses=%d", result.OverallRiskScore, len(result.RiskyClauses))
	return nil
}

// =============================================================================
// CHAT FLOW
// =============================================================================

// SendChat submits one chat turn. The user message is appended optimistically
// before the request goes out; on failure it is marked failed (never removed)
// and a synthetic assistant message carries the error detail. Guard failures
// return before any network call and leave state untouched.
func (c *Controller) SendChat(ctx context.Context, input string) error {
	trimmed := strings.TrimSpace(input)

	c.mu.Lock()
	if trimmed == "" {
		c.mu.Unlock()
		return ErrEmptyInput
	}
	if c.analysis == nil {
		c.mu.Unlock()
		return ErrNoAnalysis
	}
	if c.sending {
		c.mu.Unlock()
		return ErrBusy
	}

	userMsg := Message{
		ID:      uuid.NewString(),
		Role:    "user",
		Content: trimmed,
		Time:    time.Now(),
		State:   SendPending,
	}

	// The request carries the history as it stood before this turn; the new
	// message rides in the message field.
	req := &api.ChatRequest{
		UserID:         c.userID,
		Message:        trimmed,
		ContractText:   c.analysis.ContractText,
		AnalysisResult: c.analysis,
		ChatHistory:    wireMessages(c.messages),
	}

	c.messages = append(c.messages, userMsg)
	c.sending = true
	c.mu.Unlock()

	resp, err := c.client.Chat(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false

	if err != nil {
		c.setMessageState(userMsg.ID, SendFailed)
		c.messages = append(c.messages, Message{
			ID:      uuid.NewString(),
			Role:    "assistant",
			Content: fmt.Sprintf("Sorry, I encountered an error: %s", errorDetail(err)),
			Time:    time.Now(),
			State:   SendConfirmed,
		})
		c.log.Warn("chat turn failed: %v", err)
		return err
	}

	c.setMessageState(userMsg.ID, SendConfirmed)
	c.messages = append(c.messages, Message{
		ID:      uuid.NewString(),
		Role:    "assistant",
		Content: resp.Response,
		Time:    time.Now(),
		State:   SendConfirmed,
	})
	return nil
}

func (c *Controller) setMessageState(id string, s SendState) {
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].State = s
			return
		}
	}
}

func wireMessages(msgs []Message) []api.ChatMessage {
	wire := make([]api.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		wire = append(wire, m.Wire())
	}
	return wire
}

// =============================================================================
// HISTORY LIST
// =============================================================================

// RefreshHistory fetches the saved-session list. On failure the previously
// rendered list stays visible behind the inline error.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	c.mu.Lock()
	if c.historyLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.historyLoading = true
	c.historyErr = ""
	c.mu.Unlock()

	items, err := c.client.ChatHistory(ctx, c.userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.historyLoading = false
	if err != nil {
		c.historyErr = "Failed to fetch chat history"
		c.log.Warn("history fetch failed: %v", err)
		return err
	}
	c.history = items
	return nil
}

// LoadSession fetches a saved session and adopts it as the active context:
// its messages become the transcript and its contract info becomes the
// analysis context, so chatting resumes where it left off.
func (c *Controller) LoadSession(ctx context.Context, chatID string) error {
	sess, err := c.client.ChatSession(ctx, chatID, c.userID)
	if err != nil {
		c.mu.Lock()
		c.historyErr = "Failed to load chat session"
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatID = sess.ChatID
	c.analysis = sess.ContractInfo.AnalysisResult
	if c.analysis != nil && c.analysis.ContractText == "" {
		c.analysis.ContractText = sess.ContractInfo.ContractText
	}
	c.messages = nil
	for _, m := range sess.Messages {
		ts, terr := time.Parse(time.RFC3339, m.Timestamp)
		if terr != nil {
			ts = time.Now()
		}
		c.messages = append(c.messages, Message{
			ID:      uuid.NewString(),
			Role:    m.Role,
			Content: m.Content,
			Time:    ts,
			State:   SendConfirmed,
		})
	}
	c.historyErr = ""
	c.status = ""
	c.log.Info("session loaded: %s (%d messages)", sess.ChatID, len(sess.Messages))
	return nil
}

// DeleteSession removes a saved session and re-fetches the list on success.
// There is no optimistic removal; a failed delete leaves the list unchanged.
func (c *Controller) DeleteSession(ctx context.Context, chatID string) error {
	if err := c.client.DeleteChatSession(ctx, chatID, c.userID); err != nil {
		c.mu.Lock()
		c.historyErr = "Failed to delete chat"
		c.mu.Unlock()
		return err
	}
	return c.RefreshHistory(ctx)
}

// =============================================================================
// SNAPSHOT ACCESSORS
// =============================================================================

// Phase reports the chat flow state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.analysis == nil:
		return PhaseIdle
	case c.sending:
		return PhaseSending
	}
	return PhaseReady
}

// Analysis returns the active analysis result, nil when none is loaded.
func (c *Controller) Analysis() *api.AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

// Messages returns a copy of the transcript in chronological order.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Status returns the upload status line.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Uploading reports whether an upload is in flight.
func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// SelectedFile returns the current upload selection.
func (c *Controller) SelectedFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filePath
}

// ContractType returns the contract type for the next upload.
func (c *Controller) ContractType() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contractType
}

// History returns the saved-session list as last fetched.
func (c *Controller) History() []api.ChatHistoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.ChatHistoryItem, len(c.history))
	copy(out, c.history)
	return out
}

// HistoryError returns the inline history error, empty when none.
func (c *Controller) HistoryError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyErr
}

// HistoryLoading reports whether a history fetch is in flight.
func (c *Controller) HistoryLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyLoading
}

// ChatID returns the server-tracked session id, empty for unsaved sessions.
func (c *Controller) ChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatID
}

// errorDetail prefers the backend's verbatim detail string and falls back to
// the transport error text.
func errorDetail(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if err != nil {
		return err.Error()
	}
	return "Unknown error"
}
