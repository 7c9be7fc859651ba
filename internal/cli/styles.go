// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#6BCB77") // Green
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 2)

	// TableHeaderStyle is used for tabwriter headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// PaydayStyle marks paydays in the month grid.
	PaydayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SuccessColor)

	// TodayStyle marks today in the month grid.
	TodayStyle = lipgloss.NewStyle().
			Reverse(true)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	MoneyIcon   = "💰"
	PaydayMark  = "$"
	BillMark    = "•"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render(title),
		content,
	))
}

// StatusStyle picks the color for a bill status.
func StatusStyle(s recurrence.Status) lipgloss.Style {
	switch s {
	case recurrence.StatusPaid:
		return SubtleStyle
	case recurrence.StatusOverdue:
		return ErrorStyle
	case recurrence.StatusDueSoon:
		return WarningStyle
	default:
		return InfoStyle
	}
}

// StatusLabel is the human-readable, colored name of a bill status.
func StatusLabel(s recurrence.Status) string {
	label := string(s)
	switch s {
	case recurrence.StatusPaid:
		label = "paid"
	case recurrence.StatusOverdue:
		label = "overdue"
	case recurrence.StatusDueSoon:
		label = "due soon"
	case recurrence.StatusUpcoming:
		label = "upcoming"
	}
	return StatusStyle(s).Render(label)
}
