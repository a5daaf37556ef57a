package chat

import (
	"fmt"

	"legalshield/internal/api"
	"legalshield/internal/config"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// ViewMode determines which page is focused/active.
type ViewMode int

const (
	UploadView   ViewMode = iota // file picker + contract type
	AnalysisView                 // risk report for the active contract
	ChatView                     // transcript + input
	HistoryView                  // saved session list
)

// String returns the page name shown in the header.
func (v ViewMode) String() string {
	names := []string{"Upload", "Analysis", "Chat", "History"}
	if int(v) < len(names) {
		return names[v]
	}
	return "Unknown"
}

// sessionItem is a list item for the saved session list.
type sessionItem struct {
	item api.ChatHistoryItem
}

func (i sessionItem) Title() string {
	name := i.item.ContractFilename
	if name == "" {
		name = "Untitled contract"
	}
	return name
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("[%s] %d messages, last active %s",
		i.item.ContractType, i.item.MessageCount, i.item.LastMessageAt)
}

func (i sessionItem) FilterValue() string {
	return i.item.ContractFilename + " " + i.item.ContractType
}

// =============================================================================
// MESSAGES
// =============================================================================

// Command results delivered back into the update loop. The controller owns
// the actual state; these messages only signal that a snapshot refresh is
// due and carry the error for logging.
type (
	// uploadDoneMsg signals an upload/analyze round trip finished.
	uploadDoneMsg struct{ err error }

	// chatReplyMsg signals a chat turn finished.
	chatReplyMsg struct{ err error }

	// historyLoadedMsg signals the saved session list was (re)fetched.
	historyLoadedMsg struct{ err error }

	// sessionLoadedMsg signals a saved session was adopted as active context.
	sessionLoadedMsg struct {
		chatID string
		err    error
	}

	// sessionDeletedMsg signals a delete round trip finished.
	sessionDeletedMsg struct {
		chatID string
		err    error
	}

	// healthMsg carries the boot-time backend probe result.
	healthMsg struct {
		status *api.HealthStatus
		err    error
	}

	// configReloadedMsg arrives when the config file changes on disk.
	configReloadedMsg struct{ cfg *config.Config }
)
