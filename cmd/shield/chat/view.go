// View rendering for the shield TUI.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"legalshield/internal/risk"
	"legalshield/internal/session"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch m.viewMode {
	case UploadView:
		body = m.renderUpload()
	case AnalysisView:
		body = m.styles.Content.Render(m.viewport.View())
	case HistoryView:
		body = m.renderHistoryPage()
	default:
		inputStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.styles.Theme.Accent).
			Padding(0, 1)
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Content.Render(m.viewport.View()),
			inputStyle.Render(m.textarea.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" AI Legal Shield ")
	page := m.styles.Badge.Render(m.viewMode.String())

	var status string
	switch {
	case m.busy():
		msg := m.controller.Status()
		if msg == "" {
			msg = "Working..."
		}
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render(msg))
	case !m.backendUp && m.backendProbe != "":
		status = m.styles.Error.Render(m.backendProbe)
	default:
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", page, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, headerLine, m.styles.RenderDivider(m.width))
}

func (m Model) renderFooter() string {
	var hints string
	switch m.viewMode {
	case UploadView:
		hints = "Enter: analyze file | t: contract type | Tab: page | Esc: quit"
	case AnalysisView:
		hints = "c: chat | ↑/↓: scroll | Tab: page | Esc: back"
	case HistoryView:
		hints = "Enter: open | d: delete | r: refresh | Tab: page | Esc: back"
	default:
		hints = "Enter: send | Alt+Enter: newline | Tab: page | Esc: back"
	}
	timestamp := time.Now().Format("15:04")
	return lipgloss.NewStyle().MarginTop(1).
		Render(m.styles.Muted.Render(fmt.Sprintf("%s | %s", timestamp, hints)))
}

// =============================================================================
// UPLOAD PAGE
// =============================================================================

func (m Model) renderUpload() string {
	title := m.styles.Title.Render("Upload a contract for analysis")
	ctype := fmt.Sprintf("Contract type: %s", m.styles.Bold.Render(m.controller.ContractType()))

	var statusLine string
	if s := m.controller.Status(); s != "" {
		style := m.styles.Muted
		if strings.HasPrefix(s, "Analysis failed") || strings.HasPrefix(s, "Please select") {
			style = m.styles.Error
		} else if strings.Contains(s, "successfully") {
			style = m.styles.Success
		}
		statusLine = style.Render(s)
	}

	return m.styles.Content.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.styles.Muted.Render("Supported: .txt, .pdf, .docx"),
		ctype,
		"",
		m.filepicker.View(),
		statusLine,
	))
}

// =============================================================================
// ANALYSIS PAGE
// =============================================================================

func (m Model) renderAnalysis() string {
	a := m.controller.Analysis()
	if a == nil {
		return m.styles.Muted.Render("No analysis yet. Upload a contract first.")
	}

	var sb strings.Builder

	band := risk.ScoreBand(a.OverallRiskScore)
	score := m.styles.BandBadge(fmt.Sprintf("Risk %.0f/10", a.OverallRiskScore), band)
	name := a.Filename
	if name == "" {
		name = m.controller.SelectedFile()
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, score, "  ", m.styles.Title.Render(name)))
	sb.WriteString("\n\n")

	if a.Summary != "" {
		sb.WriteString(m.styles.Subtitle.Render("Summary") + "\n")
		sb.WriteString(m.safeRenderMarkdown(a.Summary))
		sb.WriteString("\n")
	}

	showClauses := len(a.RiskyClauses) > 0 || m.cfg.ShowEmptySections
	if showClauses {
		sb.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Risky Clauses (%d)", len(a.RiskyClauses))) + "\n")
		if len(a.RiskyClauses) == 0 {
			sb.WriteString(m.styles.Muted.Render("None flagged.") + "\n")
		}
		for i, clause := range a.RiskyClauses {
			sb.WriteString(m.renderClause(i+1, clause.RiskLevel, clause.ClauseText, clause.Explanation, clause.Suggestion))
		}
		sb.WriteString("\n")
	}

	showPoints := len(a.NegotiationPoints) > 0 || m.cfg.ShowEmptySections
	if showPoints {
		sb.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Negotiation Points (%d)", len(a.NegotiationPoints))) + "\n")
		if len(a.NegotiationPoints) == 0 {
			sb.WriteString(m.styles.Muted.Render("None suggested.") + "\n")
		}
		for _, point := range a.NegotiationPoints {
			sb.WriteString("  • " + point + "\n")
		}
	}

	return sb.String()
}

func (m Model) renderClause(n int, level, text, explanation, suggestion string) string {
	badge := m.styles.LevelBadge(risk.ParseLevel(level))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Border).
		Padding(0, 1).
		MarginBottom(1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", m.styles.Bold.Render(fmt.Sprintf("%d.", n)), badge))
	sb.WriteString(m.styles.UserInput.Render(text) + "\n")
	if explanation != "" {
		sb.WriteString(m.styles.Muted.Render("Why: "+explanation) + "\n")
	}
	if suggestion != "" {
		sb.WriteString(m.styles.Muted.Render("Suggestion: " + suggestion))
	}
	return card.Render(sb.String()) + "\n"
}

// =============================================================================
// CHAT TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript() string {
	messages := m.controller.Messages()
	if len(messages) == 0 {
		return m.styles.Muted.Render("Ask anything about the analyzed contract.")
	}

	var sb strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			label := "You"
			if msg.State == session.SendFailed {
				label = "You " + m.styles.Error.Render("(failed to send)")
			} else if msg.State == session.SendPending {
				label = "You " + m.styles.Muted.Render("(sending)")
			}
			sb.WriteString(userStyle.Render(label) + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		default: // "assistant"
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("Shield") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

// =============================================================================
// HISTORY PAGE
// =============================================================================

func (m Model) renderHistoryPage() string {
	parts := []string{m.styles.Content.Render(m.list.View())}

	if errMsg := m.controller.HistoryError(); errMsg != "" {
		parts = append(parts, m.styles.Content.Render(m.styles.Error.Render(errMsg)))
	}
	if m.confirmDelete != "" {
		prompt := "Delete this chat? It cannot be recovered. (y/n)"
		parts = append(parts, m.styles.Content.Render(m.styles.Error.Render(prompt)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
