package build

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// IconExtension is the only icon format the packaging tool accepts here.
const IconExtension = ".ico"

// Builder turns a Config into a CommandLine. The zero value is not
// useful; start from DefaultBuilder.
type Builder struct {
	// Launcher is the invocation of the packaging tool, e.g.
	// ["python3", "-m", "PyInstaller"].
	Launcher []string

	// DataSeparator joins source and destination in --add-data values.
	DataSeparator string
}

// DefaultBuilder returns a builder for the current platform's Python.
func DefaultBuilder() Builder {
	return Builder{
		Launcher:      DefaultLauncher(DefaultInterpreter()),
		DataSeparator: PlatformDataSeparator(runtime.GOOS),
	}
}

// DefaultInterpreter is the Python executable looked up on PATH.
func DefaultInterpreter() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// DefaultLauncher runs PyInstaller as a module of the given interpreter.
func DefaultLauncher(interpreter string) []string {
	return []string{interpreter, "-m", "PyInstaller"}
}

// PlatformDataSeparator returns the source/destination separator the
// packaging tool expects on goos.
func PlatformDataSeparator(goos string) string {
	if goos == "windows" {
		return ";"
	}
	return ":"
}

// Build is DefaultBuilder().Build(cfg).
func Build(cfg Config) (CommandLine, []string) {
	return DefaultBuilder().Build(cfg)
}

// Build assembles the command line in the tool's conventional order and
// returns any warnings produced along the way. It never fails: unusable
// optional inputs are dropped with a warning.
func (b Builder) Build(cfg Config) (CommandLine, []string) {
	var warnings []string
	tokens := make([]string, 0, len(b.Launcher)+12+2*len(cfg.DataMappings))
	tokens = append(tokens, b.Launcher...)

	if cfg.NoConfirm {
		tokens = append(tokens, "--noconfirm")
	}
	if cfg.Clean {
		tokens = append(tokens, "--clean")
	}
	if cfg.OneFile {
		tokens = append(tokens, "--onefile")
	}
	if cfg.Windowed {
		tokens = append(tokens, "--windowed")
	}

	if name := strings.TrimSpace(cfg.OutputName); name != "" {
		tokens = append(tokens, "--name", name)
	}
	if dir := strings.TrimSpace(cfg.OutputDir); dir != "" {
		tokens = append(tokens, "--distpath", dir)
	}

	if icon := strings.TrimSpace(cfg.IconPath); icon != "" {
		if usableIcon(icon) {
			tokens = append(tokens, "--icon="+icon)
		} else {
			warnings = append(warnings, WarnIconInvalid)
		}
	}

	sep := b.DataSeparator
	if sep == "" {
		sep = PlatformDataSeparator(runtime.GOOS)
	}
	for _, m := range cfg.DataMappings {
		if _, err := os.Stat(m.Source); err != nil {
			warnings = append(warnings, fmt.Sprintf("data source %s does not exist", m.Source))
		}
		tokens = append(tokens, "--add-data", m.Source+sep+m.Destination)
	}

	tokens = append(tokens, strings.TrimSpace(cfg.ScriptPath))

	return CommandLine{Tokens: tokens, Preview: RenderPreview(tokens)}, warnings
}

func usableIcon(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), IconExtension) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
