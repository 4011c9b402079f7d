package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows m until the user quits or ctx ends, and returns the final model.
func Run(ctx context.Context, m *Model, in io.Reader, out io.Writer) (*Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(*Model); ok {
		return fm, err
	}
	return m, err
}
