package fancy

import (
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/charmbracelet/lipgloss"
)

var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorTitle).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorHeading).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorBranch)

	ComponentStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	CommandStyle = lipgloss.NewStyle().
			Foreground(ColorCommand)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorFailure)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	CancelledStyle = lipgloss.NewStyle().
			Foreground(ColorCancelled).
			Bold(true)

	// OutputStyle leaves child output untouched.
	OutputStyle = lipgloss.NewStyle()
)

// KindStyle returns the style for a log line of kind k.
func KindStyle(k logsink.Kind) lipgloss.Style {
	switch k {
	case logsink.KindInfo:
		return ComponentStyle
	case logsink.KindWarning:
		return WarningStyle
	case logsink.KindError:
		return ErrorStyle
	case logsink.KindStatus:
		return HeaderStyle
	default:
		return OutputStyle
	}
}

// StatusStyle returns the style for a terminal status.
func StatusStyle(k logsink.StatusKind) lipgloss.Style {
	switch k {
	case logsink.StatusSuccess:
		return SuccessStyle
	case logsink.StatusCancelled:
		return CancelledStyle
	default:
		return ErrorStyle
	}
}

// StatusIcon is the prefix shown before a terminal status message.
func StatusIcon(k logsink.StatusKind) string {
	switch k {
	case logsink.StatusSuccess:
		return "✔"
	case logsink.StatusCancelled:
		return "⛔"
	default:
		return "✘"
	}
}

// StatusText renders st as a single styled line.
func StatusText(st logsink.Status) string {
	return StatusStyle(st.Kind).Render(StatusIcon(st.Kind) + " " + st.String())
}

// LineText renders one log line according to its kind.
func LineText(line logsink.Line) string {
	if line.Kind == logsink.KindStatus && line.Status != nil {
		return StatusText(*line.Status)
	}
	if line.Kind == logsink.KindWarning {
		return WarningStyle.Render("⚠ " + line.Text)
	}
	return KindStyle(line.Kind).Render(line.Text)
}

// ValidText styles valid status text (green)
func ValidText(text string) string {
	return SuccessStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// PathText styles file paths (gray)
func PathText(text string) string {
	return InfoStyle.Render(text)
}

// CommandText styles a command line preview.
func CommandText(text string) string {
	return CommandStyle.Render(text)
}

// CountText styles count numbers (cyan)
func CountText(text string) string {
	return ComponentStyle.Render(text)
}
