// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/b64drop/b64drop/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by every command. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple, used for titles and the session prompt.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, used for hints and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green, used for written artifacts and confirmations.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, used for keys and command names.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for keys, command names and code.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)

func sessionTheme() session.Theme {
	return session.Theme{
		Prompt:  TitleStyle,
		Label:   SuccessStyle,
		Muted:   SubtitleStyle,
		Warning: WarningStyle,
	}
}
