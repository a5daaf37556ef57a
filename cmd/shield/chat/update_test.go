// Tests for the Update loop: page switching, message routing, and the
// chat submit path.
package chat

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"legalshield/internal/api"
	"legalshield/internal/session"
)

// =============================================================================
// WINDOW AND PAGE SWITCHING
// =============================================================================

func TestUpdate_WindowSize(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	result := simulate(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if result.width != 120 {
		t.Errorf("Expected width 120, got %d", result.width)
	}
	if result.height != 40 {
		t.Errorf("Expected height 40, got %d", result.height)
	}
	if !result.ready {
		t.Error("Expected ready after first window size")
	}
}

func TestUpdate_TabSkipsChatWithoutAnalysis(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	result := simulate(m, tea.KeyMsg{Type: tea.KeyTab})
	if result.viewMode != HistoryView {
		t.Errorf("Expected HistoryView without an analysis, got %v", result.viewMode)
	}
}

func TestUpdate_TabCyclesAfterAnalysis(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))

	want := []ViewMode{AnalysisView, ChatView, HistoryView, UploadView}
	for _, expected := range want {
		m = simulate(m, tea.KeyMsg{Type: tea.KeyTab})
		if m.viewMode != expected {
			t.Fatalf("Expected %v, got %v", expected, m.viewMode)
		}
	}
}

func TestUpdate_UploadDoneSwitchesToAnalysis(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))

	result := simulate(m, uploadDoneMsg{err: nil})
	if result.viewMode != AnalysisView {
		t.Errorf("Expected AnalysisView after successful upload, got %v", result.viewMode)
	}
}

func TestUpdate_UploadError_StaysOnUpload(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	result := simulate(m, uploadDoneMsg{err: errors.New("boom")})
	if result.viewMode != UploadView {
		t.Errorf("Expected UploadView after failed upload, got %v", result.viewMode)
	}
}

// =============================================================================
// CHAT SUBMIT
// =============================================================================

func TestHandleSubmit_IdlePhaseKeepsInput(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))
	m.viewMode = ChatView
	m.textarea.SetValue("what does clause 3 mean")

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := newModel.(Model)

	if cmd != nil {
		t.Error("Expected no command before an analysis exists")
	}
	if result.textarea.Value() != "what does clause 3 mean" {
		t.Error("Expected input preserved when submit is refused")
	}
}

func TestHandleSubmit_ReadySendsAndClearsInput(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))
	m.viewMode = ChatView
	m.textarea.SetValue("is the deposit refundable?")

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := newModel.(Model)

	if cmd == nil {
		t.Fatal("Expected a send command")
	}
	if result.textarea.Value() != "" {
		t.Error("Expected input cleared on submit")
	}
}

func TestHandleSubmit_WhitespaceKeepsInput(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))
	m.viewMode = ChatView
	m.textarea.SetValue("   ")

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := newModel.(Model)

	if cmd != nil {
		t.Error("Expected no command for whitespace-only input")
	}
	if result.textarea.Value() != "   " {
		t.Errorf("Expected input preserved when submit is refused, got %q", result.textarea.Value())
	}
	if got := len(result.controller.Messages()); got != 0 {
		t.Errorf("Expected empty transcript, got %d messages", got)
	}
}

func TestUpdate_PendingMessageVisibleWhileSending(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	m := analyze(t, newTestModel(t, fb))
	m = simulate(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m.viewMode = ChatView
	m.textarea.SetValue("is the deposit refundable?")

	release := fb.holdChat()
	defer release()

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(Model)
	if cmd == nil {
		t.Fatal("Expected a send command")
	}

	// The runtime executes batched commands concurrently; do the same here
	// so the held request does not block the test.
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("Expected submit to batch the send with a spinner tick")
	}
	done := make(chan tea.Msg, len(batch))
	for _, c := range batch {
		c := c
		go func() { done <- c() }()
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.controller.Phase() != session.PhaseSending {
		if time.Now().After(deadline) {
			t.Fatal("Controller never entered the sending phase")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A spinner tick lands while the reply is still in flight; the user's
	// message must already be on screen.
	m = simulate(m, spinner.TickMsg{Time: time.Now()})
	content := m.viewport.View()
	if !strings.Contains(content, "is the deposit refundable?") {
		t.Error("Expected submitted message on screen before the reply arrives")
	}
	if !strings.Contains(content, "(sending)") {
		t.Error("Expected in-flight marker on screen before the reply arrives")
	}

	release()
	for range batch {
		select {
		case msg := <-done:
			m = simulate(m, msg)
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for the held reply")
		}
	}
	if m.controller.Phase() != session.PhaseReady {
		t.Errorf("Expected controller back to ready, got %v", m.controller.Phase())
	}
	if got := len(m.controller.Messages()); got != 2 {
		t.Errorf("Expected a completed turn in the transcript, got %d messages", got)
	}
}

func TestUpdate_ChatTurnRoundTrip(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))

	cmd := m.sendChatCmd("is the deposit refundable?")
	msg := cmd()
	reply, ok := msg.(chatReplyMsg)
	if !ok {
		t.Fatalf("Expected chatReplyMsg, got %T", msg)
	}
	if reply.err != nil {
		t.Fatalf("Unexpected chat error: %v", reply.err)
	}

	messages := m.controller.Messages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 transcript messages, got %d", len(messages))
	}
	if messages[1].Role != "assistant" {
		t.Errorf("Expected assistant reply, got role %q", messages[1].Role)
	}
}

func TestRenderTranscript_FailedSendIsMarked(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	m := analyze(t, newTestModel(t, fb))
	fb.setFailChat(true)

	msg := m.sendChatCmd("hello?")()
	m = simulate(m, msg)

	transcript := m.renderTranscript()
	if !strings.Contains(transcript, "(failed to send)") {
		t.Error("Expected failed send marker in transcript")
	}
	if !strings.Contains(transcript, "Sorry, I encountered an error") {
		t.Error("Expected inline error reply in transcript")
	}
	if got := len(m.controller.Messages()); got != 2 {
		t.Errorf("Expected failed message kept in transcript, got %d messages", got)
	}
}

// =============================================================================
// HISTORY PAGE
// =============================================================================

func TestUpdate_HistoryLoadedSyncsList(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.setHistory([]api.ChatHistoryItem{
		{ChatID: "chat_1", ContractFilename: "lease.pdf", ContractType: "lease", MessageCount: 4},
		{ChatID: "chat_2", ContractFilename: "offer.docx", ContractType: "employment", MessageCount: 2},
	})
	m := newTestModel(t, fb)

	msg := m.refreshHistoryCmd()()
	m = simulate(m, msg)

	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("Expected 2 list items, got %d", got)
	}
	first, ok := m.list.Items()[0].(sessionItem)
	if !ok {
		t.Fatalf("Expected sessionItem, got %T", m.list.Items()[0])
	}
	if first.Title() != "lease.pdf" {
		t.Errorf("Expected title lease.pdf, got %q", first.Title())
	}
}

func TestUpdate_DeleteConfirmFlow(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))
	m.viewMode = HistoryView
	m.confirmDelete = "chat_1"

	// 'n' cancels without a command.
	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	result := newModel.(Model)
	if cmd != nil {
		t.Error("Expected no command on declined delete")
	}
	if result.confirmDelete != "" {
		t.Error("Expected confirmation cleared after 'n'")
	}

	// 'y' fires the delete command.
	result.confirmDelete = "chat_1"
	newModel, cmd = result.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	result = newModel.(Model)
	if cmd == nil {
		t.Error("Expected delete command on confirmed delete")
	}
	if result.confirmDelete != "" {
		t.Error("Expected confirmation cleared after 'y'")
	}
}

func TestUpdate_EscClearsConfirmBeforeLeaving(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))
	m.viewMode = HistoryView
	m.confirmDelete = "chat_1"

	result := simulate(m, tea.KeyMsg{Type: tea.KeyEsc})
	if result.confirmDelete != "" {
		t.Error("Expected Esc to cancel the pending delete")
	}
	if result.viewMode != HistoryView {
		t.Errorf("Expected to stay on HistoryView, got %v", result.viewMode)
	}
}

// =============================================================================
// BOOT PROBE AND CONFIG RELOAD
// =============================================================================

func TestUpdate_HealthProbe(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	msg := m.probeHealthCmd()()
	m = simulate(m, msg)
	if !m.backendUp {
		t.Error("Expected backend marked up after healthy probe")
	}

	m = simulate(m, healthMsg{err: errors.New("connection refused")})
	if m.backendUp {
		t.Error("Expected backend marked down after failed probe")
	}
	if m.backendProbe != "Backend unreachable" {
		t.Errorf("Unexpected probe message %q", m.backendProbe)
	}
}

func TestUpdate_ConfigReloadSwapsTheme(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	cfg := *m.cfg
	cfg.Theme = "light"
	result := simulate(m, configReloadedMsg{cfg: &cfg})
	if result.cfg.Theme != "light" {
		t.Errorf("Expected reloaded theme, got %q", result.cfg.Theme)
	}
	if result.styles.Theme.IsDark {
		t.Error("Expected light styles after reload")
	}
}

func TestUpdate_ConfigReloadRepointsBackend(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	m := newTestModel(t, fb)
	fb.setFailHealth(true)

	next := newFakeBackend(t)
	cfg := *m.cfg
	cfg.BackendURL = next.server.URL
	m = simulate(m, configReloadedMsg{cfg: &cfg})

	if got := m.client.BaseURL(); got != next.server.URL {
		t.Fatalf("Expected client re-pointed to %s, got %s", next.server.URL, got)
	}

	// The controller shares the client, so its calls land on the new
	// backend; the old one is already refusing health checks.
	msg := m.probeHealthCmd()()
	health, ok := msg.(healthMsg)
	if !ok {
		t.Fatalf("Expected healthMsg, got %T", msg)
	}
	if health.err != nil {
		t.Errorf("Expected probe against the reloaded backend to succeed: %v", health.err)
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func TestView_AllModesRenderWithoutPanic(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))
	m = simulate(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	for _, mode := range []ViewMode{UploadView, AnalysisView, ChatView, HistoryView} {
		m.viewMode = mode
		m.refreshViewport()
		if m.View() == "" {
			t.Errorf("Empty view for mode %v", mode)
		}
	}
}

func TestRenderAnalysis_IncludesSections(t *testing.T) {
	t.Parallel()
	m := analyze(t, newTestModel(t, newFakeBackend(t)))

	out := m.renderAnalysis()
	for _, want := range []string{"Risky Clauses (1)", "Negotiation Points (1)", "Cap the late fee"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected analysis view to contain %q", want)
		}
	}
}

func TestRenderClause_UnknownLevelFallsBack(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	out := m.renderClause(1, "catastrophic", "Clause text", "", "")
	if !strings.Contains(out, "UNRATED") {
		t.Error("Expected unknown risk level to render as UNRATED")
	}
}

func TestCycleContractType(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, newFakeBackend(t))

	if got := m.controller.ContractType(); got != "general" {
		t.Fatalf("Expected initial type general, got %q", got)
	}
	m.cycleContractType()
	if got := m.controller.ContractType(); got != session.ContractTypes[1] {
		t.Errorf("Expected second contract type after cycle, got %q", got)
	}
}
