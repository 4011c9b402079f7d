// Package build assembles the PyInstaller command line for a single
// build request. Nothing in this package spawns processes; the only I/O
// is a stat of the icon path and of data-mapping sources.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataMapping instructs the packaging tool to bundle an extra file or
// directory. Destination is a relative label inside the package and is
// passed through as-is.
type DataMapping struct {
	Source      string
	Destination string
}

// String renders the mapping the way it is shown to users.
func (m DataMapping) String() string {
	return fmt.Sprintf("%s -> %s", m.Source, m.Destination)
}

// Config is an immutable snapshot of one build request.
type Config struct {
	// ScriptPath is the entry script. It must name an existing regular file.
	ScriptPath string

	// OutputName is the name of the produced executable. Empty lets the
	// packaging tool derive it from the script.
	OutputName string

	// OutputDir overrides the tool's dist directory when set.
	OutputDir string

	// IconPath is honored only when it names an existing .ico file.
	IconPath string

	OneFile   bool
	Windowed  bool
	Clean     bool
	NoConfirm bool

	// DataMappings are emitted in order.
	DataMappings []DataMapping
}

// Validate checks the precondition that must hold before any process is
// spawned: the script path names an existing regular file.
func (c Config) Validate() error {
	script := strings.TrimSpace(c.ScriptPath)
	if script == "" {
		return fmt.Errorf("%w: no script selected", ErrScriptMissing)
	}

	info, err := os.Stat(script)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrScriptMissing, script)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrScriptNotFile, script)
	}
	return nil
}

// DefaultName returns the script's base name without its extension.
func (c Config) DefaultName() string {
	script := strings.TrimSpace(c.ScriptPath)
	if script == "" {
		return ""
	}
	base := filepath.Base(script)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EffectiveName is the name the produced executable will carry.
func (c Config) EffectiveName() string {
	if name := strings.TrimSpace(c.OutputName); name != "" {
		return name
	}
	return c.DefaultName()
}

// DefaultDestination proposes a bundle destination for a data source:
// the directory's own name for directories, the parent directory's name
// for files, falling back to "data" or "assets".
func DefaultDestination(source string) string {
	clean := filepath.Clean(source)
	info, err := os.Stat(clean)
	if err == nil && info.IsDir() {
		if base := filepath.Base(clean); validLabel(base) {
			return base
		}
		return "assets"
	}

	if parent := filepath.Base(filepath.Dir(clean)); validLabel(parent) {
		return parent
	}
	return "data"
}

func validLabel(s string) bool {
	return s != "" && s != "." && s != ".." && s != string(filepath.Separator)
}
