// Package chat provides the interactive TUI for contract analysis.
// The interface is split across files:
//   - model_types.go: view modes and update-loop messages
//   - model.go: Model, New, Init, async commands (this file)
//   - model_update.go: Update loop and key handling
//   - view.go: rendering
package chat

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"legalshield/cmd/shield/ui"
	"legalshield/internal/api"
	"legalshield/internal/config"
	"legalshield/internal/logging"
	"legalshield/internal/prefs"
	"legalshield/internal/session"
)

// Model is the main model for the interactive interface.
type Model struct {
	// UI components
	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	list       list.Model
	filepicker filepicker.Model
	styles     ui.Styles
	renderer   *glamour.TermRenderer

	viewMode ViewMode

	// Backend
	controller *session.Controller
	client     *api.Client
	cfg        *config.Config
	prefs      *prefs.Manager
	log        *logging.Logger

	// Boot state
	backendUp    bool
	backendProbe string

	// Delete confirmation, armed by 'd' in the history view.
	confirmDelete string // chat id pending confirmation, empty when none

	width  int
	height int
	ready  bool
}

// New creates the chat model. The controller carries all page state; the
// model only holds presentation concerns.
func New(controller *session.Controller, client *api.Client, cfg *config.Config, pm *prefs.Manager) Model {
	theme := ui.ThemeFor(cfg.Theme)
	styles := ui.NewStyles(theme)

	ta := textarea.New()
	ta.Placeholder = "Ask about your contract..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Subtitle

	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt", ".pdf", ".docx", ".doc"}
	if pm != nil {
		if dir := pm.Get().LastUploadDir; dir != "" {
			fp.CurrentDirectory = dir
		}
	}
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}

	sessionList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	sessionList.Title = "Saved Chats"
	sessionList.SetShowStatusBar(false)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil // plain text fallback in safeRenderMarkdown
	}

	return Model{
		textarea:   ta,
		spinner:    sp,
		filepicker: fp,
		list:       sessionList,
		styles:     styles,
		renderer:   renderer,
		viewMode:   UploadView,
		controller: controller,
		client:     client,
		cfg:        cfg,
		prefs:      pm,
		log:        logging.Get(logging.CategoryUI),
	}
}

// Init probes the backend and kicks off the first history fetch so the
// saved-chats page is warm by the time the user tabs to it.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.filepicker.Init(),
		m.probeHealthCmd(),
		m.refreshHistoryCmd(),
	)
}

// =============================================================================
// ASYNC COMMANDS
// =============================================================================
// Each command runs in its own goroutine; the controller serializes access
// internally, so commands only report completion.

func (m Model) timeoutCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.cfg.Timeout())
}

func (m Model) uploadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.timeoutCtx()
		defer cancel()
		return uploadDoneMsg{err: m.controller.Upload(ctx)}
	}
}

func (m Model) sendChatCmd(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.timeoutCtx()
		defer cancel()
		return chatReplyMsg{err: m.controller.SendChat(ctx, input)}
	}
}

func (m Model) refreshHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.timeoutCtx()
		defer cancel()
		return historyLoadedMsg{err: m.controller.RefreshHistory(ctx)}
	}
}

func (m Model) loadSessionCmd(chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.timeoutCtx()
		defer cancel()
		return sessionLoadedMsg{chatID: chatID, err: m.controller.LoadSession(ctx, chatID)}
	}
}

func (m Model) deleteSessionCmd(chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.timeoutCtx()
		defer cancel()
		return sessionDeletedMsg{chatID: chatID, err: m.controller.DeleteSession(ctx, chatID)}
	}
}

func (m Model) probeHealthCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.timeoutCtx()
		defer cancel()
		status, err := m.client.Health(ctx)
		return healthMsg{status: status, err: err}
	}
}

// syncHistoryList rebuilds the bubbles list from the controller snapshot.
func (m *Model) syncHistoryList() {
	items := m.controller.History()
	listItems := make([]list.Item, 0, len(items))
	for _, it := range items {
		listItems = append(listItems, sessionItem{item: it})
	}
	m.list.SetItems(listItems)
}
