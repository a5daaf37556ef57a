// Package ui provides the visual styling for the shield interactive CLI,
// with light/dark mode support and the severity color palette shared by
// every view that renders risk.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"legalshield/internal/risk"
)

var (
	// Light mode colors
	LightBackground = lipgloss.Color("#f8f9fa")
	LightForeground = lipgloss.Color("#1a2338")
	LightPrimary    = lipgloss.Color("#3b5bdb")
	LightAccent     = lipgloss.Color("#7048e8")
	LightSecondary  = lipgloss.Color("#e9ecef")
	LightMuted      = lipgloss.Color("#adb5bd")
	LightBorder     = lipgloss.Color("#dee2e6")

	// Dark mode colors
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#748ffc")
	DarkAccent     = lipgloss.Color("#9775fa")
	DarkSecondary  = lipgloss.Color("#1e2a3d")
	DarkMuted      = lipgloss.Color("#5c6b85")
	DarkBorder     = lipgloss.Color("#2a3850")

	// Severity colors (same in both modes)
	SeverityHigh      = lipgloss.Color("#e03131") // red
	SeverityMedium    = lipgloss.Color("#f59f00") // yellow
	SeverityLowMedium = lipgloss.Color("#1c7ed6") // blue
	SeverityLow       = lipgloss.Color("#2f9e44") // green
	SeverityUnknown   = lipgloss.Color("#868e96") // gray fallback

	Destructive = lipgloss.Color("#e03131")
	Success     = lipgloss.Color("#2f9e44")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeFor resolves a configured theme name. "auto" falls back to terminal
// detection.
func ThemeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	return DetectTheme()
}

// DetectTheme guesses light/dark from COLORFGBG; dark is the safer default
// for unknown terminals.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if bgIdx == 7 || bgIdx == 15 {
					return LightTheme()
				}
			}
		}
	}
	return DarkTheme()
}

// Styles holds the rendered lipgloss styles for one theme.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Content lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	UserInput lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style

	Badge   lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Background).
			Background(theme.Primary).
			Padding(0, 1),
		Content: lipgloss.NewStyle().Padding(0, 1),

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Foreground(theme.Accent),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Bold:     lipgloss.NewStyle().Bold(true),

		UserInput: lipgloss.NewStyle().Foreground(theme.Foreground),

		Success: lipgloss.NewStyle().Foreground(Success),
		Error:   lipgloss.NewStyle().Foreground(Destructive),

		Badge: lipgloss.NewStyle().
			Foreground(theme.Background).
			Background(theme.Accent).
			Padding(0, 1),
		Divider: lipgloss.NewStyle().Foreground(theme.Border),
	}
}

// RenderDivider renders a horizontal rule across the given width.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 40
	}
	return s.Divider.Render(strings.Repeat("─", width))
}

// BandColor maps a score band to its display color.
func BandColor(b risk.Band) lipgloss.Color {
	switch b {
	case risk.BandHigh:
		return SeverityHigh
	case risk.BandMedium:
		return SeverityMedium
	case risk.BandLowMedium:
		return SeverityLowMedium
	}
	return SeverityLow
}

// LevelColor maps a clause level to its display color. Unknown levels get
// the gray fallback, never an error.
func LevelColor(l risk.Level) lipgloss.Color {
	switch l {
	case risk.LevelHigh:
		return SeverityHigh
	case risk.LevelMedium:
		return SeverityMedium
	case risk.LevelLow:
		return SeverityLow
	}
	return SeverityUnknown
}

// BandBadge renders the score badge (e.g. "7/10") in the band color.
func (s Styles) BandBadge(text string, b risk.Band) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.Theme.Background).
		Background(BandColor(b)).
		Padding(0, 1).
		Render(text)
}

// LevelBadge renders a clause severity tag in the level color.
func (s Styles) LevelBadge(l risk.Level) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.Theme.Background).
		Background(LevelColor(l)).
		Padding(0, 1).
		Render(l.Badge())
}
