// Package fancy provides the colors, styles and trees used for terminal
// output: streamed build logs, status lines and profile summaries.
package fancy

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette, by what is drawn with it. ANSI 256 codes.
var (
	ColorTitle     = lipgloss.Color("39")
	ColorHeading   = lipgloss.Color("15")
	ColorInfo      = lipgloss.Color("45")
	ColorCommand   = lipgloss.Color("35")
	ColorWarning   = lipgloss.Color("228")
	ColorFailure   = lipgloss.Color("196")
	ColorSuccess   = lipgloss.Color("82")
	ColorCancelled = lipgloss.Color("208")
	ColorMuted     = lipgloss.Color("250")
	ColorBranch    = lipgloss.Color("240")
)

// DisableColor renders every style as plain text for the rest of the process.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
