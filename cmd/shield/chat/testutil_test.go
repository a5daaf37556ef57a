// Test utilities for the chat package: a scripted backend and a model
// builder wired against it.
package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"legalshield/internal/api"
	"legalshield/internal/config"
	"legalshield/internal/session"
)

// fakeBackend serves canned analysis, chat, and history responses. Failure
// modes are toggled per route.
type fakeBackend struct {
	mu         sync.Mutex
	failUpload bool
	failChat   bool
	failHealth bool
	chatHold   chan struct{}
	history    []api.ChatHistoryItem

	server *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fail := fb.failUpload
		fb.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Unsupported file type"})
			return
		}
		json.NewEncoder(w).Encode(api.AnalysisResult{
			OverallRiskScore:  7,
			Summary:           "A risky lease.",
			RiskyClauses:      []api.RiskyClause{{ClauseText: "Auto-renewal", RiskLevel: "high"}},
			NegotiationPoints: []string{"Cap the late fee"},
			ContractText:      "full text",
			ChatID:            "chat_1",
		})
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fail := fb.failChat
		hold := fb.chatHold
		fb.mu.Unlock()
		if hold != nil {
			<-hold
		}
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "model overloaded"})
			return
		}
		json.NewEncoder(w).Encode(api.ChatResponse{Response: "The clause means...", Status: "success"})
	})
	mux.HandleFunc("/chat-history/", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		items := fb.history
		fb.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"chat_history": items})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fail := fb.failHealth
		fb.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(api.HealthStatus{Status: "healthy"})
	})

	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) setFailChat(fail bool) {
	fb.mu.Lock()
	fb.failChat = fail
	fb.mu.Unlock()
}

func (fb *fakeBackend) setFailHealth(fail bool) {
	fb.mu.Lock()
	fb.failHealth = fail
	fb.mu.Unlock()
}

// holdChat blocks the next /chat requests until the returned release func is
// called, letting tests observe the in-flight state.
func (fb *fakeBackend) holdChat() (release func()) {
	ch := make(chan struct{})
	fb.mu.Lock()
	fb.chatHold = ch
	fb.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(ch)
			fb.mu.Lock()
			fb.chatHold = nil
			fb.mu.Unlock()
		})
	}
}

func (fb *fakeBackend) setHistory(items []api.ChatHistoryItem) {
	fb.mu.Lock()
	fb.history = items
	fb.mu.Unlock()
}

// newTestModel builds a ready model against the fake backend.
func newTestModel(t *testing.T, fb *fakeBackend) Model {
	t.Helper()
	cfg := config.Default()
	cfg.BackendURL = fb.server.URL

	client := api.NewClient(fb.server.URL)
	controller := session.New(client, "user_test", "Test User")

	m := New(controller, client, cfg, nil)
	m.ready = true
	m.width = 100
	m.height = 40
	return m
}

// analyze runs one upload through the controller so chat is reachable.
func analyze(t *testing.T, m Model) Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte("This lease renews automatically."), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := m.controller.SelectFile(path); err != nil {
		t.Fatalf("SelectFile: %v", err)
	}
	ctx, cancel := m.timeoutCtx()
	defer cancel()
	if err := m.controller.Upload(ctx); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return m
}

// simulate sends messages through Update and returns the final model.
func simulate(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		newModel, _ := m.Update(msg)
		m = newModel.(Model)
	}
	return m
}
