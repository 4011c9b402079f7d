package build

import "strings"

// CommandLine is an argument vector plus a copyable preview. Execution
// always uses Tokens directly; Preview exists for display only.
type CommandLine struct {
	Tokens  []string
	Preview string
}

// NewCommandLine copies tokens and renders their preview.
func NewCommandLine(tokens ...string) CommandLine {
	cp := make([]string, len(tokens))
	copy(cp, tokens)
	return CommandLine{Tokens: cp, Preview: RenderPreview(cp)}
}

// Name returns the executable token, or "" for an empty command line.
func (c CommandLine) Name() string {
	if len(c.Tokens) == 0 {
		return ""
	}
	return c.Tokens[0]
}

// Args returns every token after the executable.
func (c CommandLine) Args() []string {
	if len(c.Tokens) < 2 {
		return nil
	}
	return c.Tokens[1:]
}

// IsEmpty reports whether there is nothing to execute.
func (c CommandLine) IsEmpty() bool {
	return len(c.Tokens) == 0
}

func (c CommandLine) String() string {
	return c.Preview
}

// RenderPreview joins tokens with spaces, double-quoting any token that
// contains a space or tab.
func RenderPreview(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = quoteIfNeeded(tok)
	}
	return strings.Join(quoted, " ")
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
