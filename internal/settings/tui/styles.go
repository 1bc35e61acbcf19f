package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/merrow/brim/internal/version"
)

// Application branding constants
const (
	AppName       = "BRIM SETTINGS"
	GitHubURL     = "github.com/merrow/brim"
	GitHubFullURL = "https://github.com/merrow/brim"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
	LabelColumnWidth = 30  // Width of the row label column
)

// Color palette
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#00B3B3") // Teal
	SecondaryColor = lipgloss.Color("#5FD787") // Green
	WarningColor   = lipgloss.Color("#FFB86C") // Amber
	ErrorColor     = lipgloss.Color("#FF5F5F") // Red

	// Neutral colors
	TextColor       = lipgloss.Color("#FFFFFF") // White
	SubtleColor     = lipgloss.Color("#626262") // Gray
	BorderColor     = lipgloss.Color("#00B3B3") // Teal (same as primary)
	HighlightColor  = lipgloss.Color("#5FD787") // Green (same as secondary)
	BackgroundColor = lipgloss.Color("#1A1A1A") // Dark gray
)

// Common styles
var (
	// Title style for screen headings
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0).
			MarginBottom(1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Section header style for settings list groups
	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true).
				PaddingLeft(1).
				MarginTop(1)

	// Menu item style (unselected)
	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(TextColor)

	// Menu item style (selected)
	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(HighlightColor).
				Bold(true)

	// Detail text style (current value shown after a row label)
	DetailStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Status line styles
	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			PaddingLeft(1)
	StatusOKStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			PaddingLeft(1)
	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				PaddingLeft(1)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// RenderTitle renders a screen heading with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSectionTitle renders a settings section header
func RenderSectionTitle(text string) string {
	return SectionTitleStyle.Render(text)
}

// RenderMenuItem renders a list row with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render("  " + text)
}

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(helpText)
}

// RenderApplicationContainer wraps screen content in the shared
// application chrome: a bordered full-screen panel with the header
// (name, version, GitHub URL) on top and context-sensitive help text
// pinned to the bottom. Every screen's View goes through this:
//
//	func (m Model) View() string {
//	    content := m.buildContent()
//	    return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
//	}
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}

	header := BuildHeaderContent()
	footer := BuildFooterContent(footerText)

	// Header section with bottom border. Width leaves room for the
	// outer border.
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth - 4).
		Padding(0, 1)

	styledHeader := headerStyle.Render(header)

	// Footer section with top border
	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth - 4).
		Padding(0, 1)

	styledFooter := footerStyle.Render(footer)

	// Content area, capped so rows do not stretch across ultrawide
	// terminals. No padding here so callers control their own margins.
	contentWidth := terminalWidth - 4
	if contentWidth > MaxContentWidth {
		contentWidth = MaxContentWidth
	}
	contentStyle := lipgloss.NewStyle().
		Width(contentWidth)

	styledContent := contentStyle.Render(content)

	innerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		styledHeader,
		styledContent,
		styledFooter,
	)

	// Outer border spans the full terminal so screen transitions do not
	// leave stale cells behind.
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top)

	bordered := borderStyle.Render(innerContent)

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		bordered,
	)
}

// InlineEditorStyle returns styling for the inline text editor shown in
// place of a row while its string value is being edited.
func InlineEditorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.Border{
			Top:    "━",
			Bottom: "━",
			Left:   "┃",
			Right:  "┃",
		}).
		BorderForeground(PrimaryColor).
		Padding(0, 1)
}

// DeviceClass describes how much horizontal room the terminal gives the
// settings list. Compact terminals swap inline switches for button rows;
// behavior is identical, only the accessory presentation differs.
type DeviceClass int

const (
	// DeviceClassCompact is a narrow terminal, below CompactWidthThreshold.
	DeviceClassCompact DeviceClass = iota
	// DeviceClassRegular is a full-width terminal.
	DeviceClassRegular
)

// CompactWidthThreshold is the terminal width below which the settings
// list is laid out for the compact device class.
const CompactWidthThreshold = 100

// String returns the class name used in logs.
func (c DeviceClass) String() string {
	if c == DeviceClassCompact {
		return "compact"
	}
	return "regular"
}

// DeviceClassForWidth maps a terminal width to its device class.
func DeviceClassForWidth(width int) DeviceClass {
	if width > 0 && width < CompactWidthThreshold {
		return DeviceClassCompact
	}
	return DeviceClassRegular
}

// DetectDeviceClass inspects the terminal the process is attached to.
// Unknown sizes (pipes, CI, dumb terminals) fall back to the regular
// class.
func DetectDeviceClass() DeviceClass {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return DeviceClassRegular
	}
	return DeviceClassForWidth(width)
}
