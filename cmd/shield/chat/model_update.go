package chat

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"legalshield/cmd/shield/ui"
	"legalshield/internal/config"
	"legalshield/internal/prefs"
	"legalshield/internal/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings first.
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyTab:
			// Tab cycles pages. Analysis is skipped until one exists.
			m.confirmDelete = ""
			m.viewMode = m.nextView()
			if m.viewMode == HistoryView && !m.controller.HistoryLoading() {
				return m, m.refreshHistoryCmd()
			}
			m.refreshViewport()
			return m, nil

		case tea.KeyEsc:
			if m.confirmDelete != "" {
				m.confirmDelete = ""
				return m, nil
			}
			if m.viewMode != ChatView && m.controller.Analysis() != nil {
				m.viewMode = ChatView
				m.refreshViewport()
				return m, nil
			}
			if m.viewMode != UploadView && m.controller.Analysis() == nil {
				m.viewMode = UploadView
				return m, nil
			}
			return m, tea.Quit
		}

		switch m.viewMode {
		case UploadView:
			return m.updateUploadKeys(msg)
		case HistoryView:
			return m.updateHistoryKeys(msg)
		case AnalysisView:
			if msg.String() == "c" {
				m.viewMode = ChatView
				m.refreshViewport()
				return m, nil
			}
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		// Chat view.
		if msg.Type == tea.KeyEnter && !msg.Alt && !msg.Paste {
			return m.handleSubmit()
		}
		m.textarea, taCmd = m.textarea.Update(msg)
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(taCmd, vpCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 4
		footerHeight := 2
		inputHeight := 4
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		m.textarea.SetWidth(msg.Width - 4)
		m.list.SetSize(msg.Width-2, msg.Height-headerHeight-footerHeight)
		m.filepicker.Height = msg.Height - headerHeight - footerHeight - 4
		m.ready = true
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		// The optimistic user append happens inside the controller after
		// submit; ticks are the redraw heartbeat that makes it visible
		// before the reply lands.
		if m.controller.Phase() == session.PhaseSending {
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, spCmd

	case uploadDoneMsg:
		if msg.err == nil {
			m.viewMode = AnalysisView
			m.rememberUpload()
		}
		m.refreshViewport()
		return m, nil

	case chatReplyMsg:
		if msg.err != nil {
			m.log.Warn("chat turn failed: %v", msg.err)
		}
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.log.Warn("history fetch failed: %v", msg.err)
		}
		m.syncHistoryList()
		return m, nil

	case sessionLoadedMsg:
		if msg.err == nil {
			m.viewMode = ChatView
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case sessionDeletedMsg:
		if msg.err != nil {
			m.log.Warn("delete failed for %s: %v", msg.chatID, msg.err)
		}
		m.syncHistoryList()
		return m, nil

	case healthMsg:
		m.backendUp = msg.err == nil
		if msg.err != nil {
			m.backendProbe = "Backend unreachable"
			m.log.Warn("health probe failed: %v", msg.err)
		} else if msg.status != nil {
			m.backendProbe = msg.status.Status
		}
		return m, nil

	case configReloadedMsg:
		if msg.cfg != nil {
			m.cfg = msg.cfg
			m.styles = ui.NewStyles(ui.ThemeFor(msg.cfg.Theme))
			// Re-point the shared HTTP client; the controller holds the same
			// instance, so subsequent calls hit the new backend.
			m.client.SetBaseURL(msg.cfg.BackendURL)
			m.client.SetTimeout(msg.cfg.Timeout())
			m.refreshViewport()
		}
		return m, nil
	}

	// Non-key messages flow to the component owning the current view, so the
	// file picker sees its internal readDirMsg and the like.
	switch m.viewMode {
	case UploadView:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	case HistoryView:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// =============================================================================
// PER-VIEW KEY HANDLING
// =============================================================================

func (m Model) updateUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "t":
		m.cycleContractType()
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		if err := m.controller.SelectFile(path); err != nil {
			return m, cmd
		}
		// A valid selection goes straight to analysis.
		return m, tea.Batch(cmd, m.uploadCmd())
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		_ = m.controller.SelectFile(path) // sets the advisory status line
		return m, cmd
	}
	return m, cmd
}

func (m Model) updateHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Delete confirmation swallows everything except y/n.
	if m.confirmDelete != "" {
		switch msg.String() {
		case "y", "Y":
			id := m.confirmDelete
			m.confirmDelete = ""
			return m, m.deleteSessionCmd(id)
		case "n", "N":
			m.confirmDelete = ""
		}
		return m, nil
	}

	switch msg.String() {
	case "r":
		if !m.controller.HistoryLoading() {
			return m, m.refreshHistoryCmd()
		}
		return m, nil
	case "d":
		if selected, ok := m.list.SelectedItem().(sessionItem); ok {
			m.confirmDelete = selected.item.ChatID
		}
		return m, nil
	case "enter":
		if selected, ok := m.list.SelectedItem().(sessionItem); ok {
			return m, m.loadSessionCmd(selected.item.ChatID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSubmit sends the textarea content as one chat turn. Guard failures
// are silent; the controller never received the input, so nothing changes,
// including the textarea.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := m.textarea.Value()
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	if m.controller.Phase() != session.PhaseReady {
		return m, nil
	}
	m.textarea.Reset()
	cmd := m.sendChatCmd(input)
	// Render the optimistic append on the next tick.
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// =============================================================================
// HELPERS
// =============================================================================

func (m Model) busy() bool {
	return m.controller.Uploading() ||
		m.controller.Phase() == session.PhaseSending ||
		m.controller.HistoryLoading()
}

// nextView cycles Upload, Analysis, Chat, History. Analysis and Chat need an
// active contract.
func (m Model) nextView() ViewMode {
	next := (m.viewMode + 1) % 4
	if m.controller.Analysis() == nil && (next == AnalysisView || next == ChatView) {
		next = HistoryView
	}
	return next
}

func (m *Model) cycleContractType() {
	current := m.controller.ContractType()
	for i, t := range session.ContractTypes {
		if t == current {
			m.controller.SetContractType(session.ContractTypes[(i+1)%len(session.ContractTypes)])
			return
		}
	}
	m.controller.SetContractType(session.ContractTypes[0])
}

// rememberUpload stamps the preferences after a successful analysis.
func (m Model) rememberUpload() {
	if m.prefs == nil {
		return
	}
	m.prefs.Update(func(p *prefs.Preferences) {
		p.LastContractType = m.controller.ContractType()
		p.LastUploadDir = filepath.Dir(m.controller.SelectedFile())
		p.UploadCount++
	})
	if err := m.prefs.Save(); err != nil {
		m.log.Warn("failed to save preferences: %v", err)
	}
}

// refreshViewport re-renders the content backing the scrolling pane for the
// current view.
func (m *Model) refreshViewport() {
	switch m.viewMode {
	case ChatView:
		m.viewport.SetContent(m.renderTranscript())
	case AnalysisView:
		m.viewport.SetContent(m.renderAnalysis())
	}
}

// ReloadConfig is called by the config watcher; it adapts the external
// callback into an update-loop message.
func ReloadConfig(p *tea.Program) func(*config.Config) {
	return func(cfg *config.Config) {
		p.Send(configReloadedMsg{cfg: cfg})
	}
}
