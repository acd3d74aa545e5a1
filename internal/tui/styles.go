package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	PrimaryColor   = lipgloss.Color("39")  // Blue
	SecondaryColor = lipgloss.Color("212") // Pink
	AccentColor    = lipgloss.Color("76")  // Green
	ErrorColor     = lipgloss.Color("196") // Red
	WarningColor   = lipgloss.Color("214") // Orange
	MutedColor     = lipgloss.Color("240") // Gray
	TextColor      = lipgloss.Color("252") // Light gray
	BgColor        = lipgloss.Color("235") // Dark gray
)

// Styles
var (
	// Sidebar styles
	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)

	SidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor).
				Padding(0, 1).
				MarginBottom(1)

	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Background(PrimaryColor).
				Foreground(lipgloss.Color("0")).
				Padding(0, 1)

	ItemActiveStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true).
			Padding(0, 1)

	// Main panel styles
	PanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	FieldNameStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	ScoreStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	SnippetStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	InputFocusedStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(AccentColor).
				Padding(0, 1)

	// Status bar styles
	StatusBarStyle = lipgloss.NewStyle().
			Background(BgColor).
			Foreground(TextColor).
			Padding(0, 1)

	StatusModeStyle = lipgloss.NewStyle().
			Background(PrimaryColor).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			MarginRight(1)

	StatusBusyStyle = lipgloss.NewStyle().
			Background(AccentColor).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	StatusErrorStyle = lipgloss.NewStyle().
				Background(ErrorColor).
				Foreground(lipgloss.Color("0")).
				Padding(0, 1)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	// Help styles
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Modal dialog styles
	ModalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(WarningColor).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			MarginBottom(1)

	ModalErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	ButtonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1)

	ButtonFocusedStyle = lipgloss.NewStyle().
				Background(PrimaryColor).
				Foreground(lipgloss.Color("0")).
				Padding(0, 2).
				MarginRight(1)

	ButtonDangerStyle = lipgloss.NewStyle().
				Background(ErrorColor).
				Foreground(lipgloss.Color("0")).
				Padding(0, 2).
				MarginRight(1)
)
