package probe

import (
	"strings"

	"github.com/atlanticdynamic/exebuild/internal/build"
)

// DefaultRequirement is the pip requirement installed when none is configured.
const DefaultRequirement = "pyinstaller"

// Installer describes how to install the packaging tool with pip. Its
// command is executed by the same runner used for builds.
type Installer struct {
	Interpreter string
	Requirement string
	// ExtraArgs are appended after "install", e.g. "--user" or "--upgrade".
	ExtraArgs []string
}

// NewInstaller returns an installer for the given interpreter.
func NewInstaller(interpreter string) Installer {
	return Installer{Interpreter: interpreter, Requirement: DefaultRequirement}
}

// Command returns "<interpreter> -m pip install [extra...] <requirement>".
func (i Installer) Command() build.CommandLine {
	interpreter := strings.TrimSpace(i.Interpreter)
	if interpreter == "" {
		interpreter = build.DefaultInterpreter()
	}
	req := strings.TrimSpace(i.Requirement)
	if req == "" {
		req = DefaultRequirement
	}

	tokens := []string{interpreter, "-m", "pip", "install"}
	tokens = append(tokens, i.ExtraArgs...)
	tokens = append(tokens, req)
	return build.NewCommandLine(tokens...)
}

// Hint is the message shown when the tool is missing.
func (i Installer) Hint() string {
	return "PyInstaller is not installed; run `exebuild install` or `" + i.Command().Preview + "`"
}
