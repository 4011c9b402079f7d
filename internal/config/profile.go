// Package config loads build profiles: TOML files that describe what to
// package and how, so a build can be repeated without retyping flags.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/atlanticdynamic/exebuild/internal/probe"
)

const (
	VersionLatest  = "v1"
	VersionUnknown = "unknown"
)

// Profile is the root of a build profile.
type Profile struct {
	Version string  `toml:"version"`
	Build   Build   `toml:"build"`
	Data    []Data  `toml:"data"`
	Tool    Tool    `toml:"tool"`
	Logging Logging `toml:"logging"`
	Console Console `toml:"console"`
	History History `toml:"history"`

	// dir is the profile file's directory; relative paths resolve against it.
	dir string
}

// Build mirrors the packaging options. Unset booleans default to true.
type Build struct {
	Script    string `toml:"script"`
	Name      string `toml:"name"`
	Dist      string `toml:"dist"`
	Icon      string `toml:"icon"`
	OneFile   *bool  `toml:"onefile"`
	Windowed  *bool  `toml:"windowed"`
	Clean     *bool  `toml:"clean"`
	NoConfirm *bool  `toml:"noconfirm"`
}

// Data is one [[data]] entry. An empty destination is derived from the source.
type Data struct {
	Source      string `toml:"source"`
	Destination string `toml:"destination"`
}

type Tool struct {
	Interpreter  string `toml:"interpreter"`
	MinVersion   string `toml:"min_version"`
	Requirement  string `toml:"requirement"`
	ProbeTimeout string `toml:"probe_timeout"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Console struct {
	DrainInterval string `toml:"drain_interval"`
}

type History struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
	// Keep bounds the stored sessions; zero keeps everything.
	Keep int `toml:"keep"`
}

// Default returns an empty v1 profile.
func Default() *Profile {
	return &Profile{Version: VersionLatest}
}

// Dir returns the directory relative paths resolve against.
func (p *Profile) Dir() string {
	return p.dir
}

func (p *Profile) resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || p.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.dir, path)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ToBuildConfig converts the profile into a build configuration. The
// output name falls back to the script's base name.
func (p *Profile) ToBuildConfig() build.Config {
	cfg := build.Config{
		ScriptPath: p.resolve(p.Build.Script),
		OutputName: strings.TrimSpace(p.Build.Name),
		OutputDir:  p.resolve(p.Build.Dist),
		IconPath:   p.resolve(p.Build.Icon),
		OneFile:    boolOr(p.Build.OneFile, true),
		Windowed:   boolOr(p.Build.Windowed, true),
		Clean:      boolOr(p.Build.Clean, true),
		NoConfirm:  boolOr(p.Build.NoConfirm, true),
	}
	if cfg.OutputName == "" {
		cfg.OutputName = cfg.DefaultName()
	}

	for _, d := range p.Data {
		src := p.resolve(d.Source)
		dest := strings.TrimSpace(d.Destination)
		if dest == "" {
			dest = build.DefaultDestination(src)
		}
		cfg.DataMappings = append(cfg.DataMappings, build.DataMapping{Source: src, Destination: dest})
	}
	return cfg
}

// Interpreter returns the configured Python interpreter or the platform default.
func (p *Profile) Interpreter() string {
	if s := strings.TrimSpace(p.Tool.Interpreter); s != "" {
		return s
	}
	return build.DefaultInterpreter()
}

// Launcher returns the tokens that start the packaging tool.
func (p *Profile) Launcher() []string {
	return build.DefaultLauncher(p.Interpreter())
}

// Builder returns a command builder for the configured interpreter.
func (p *Profile) Builder() build.Builder {
	b := build.DefaultBuilder()
	b.Launcher = p.Launcher()
	return b
}

// Installer returns the installer for the configured interpreter and requirement.
func (p *Profile) Installer() probe.Installer {
	inst := probe.NewInstaller(p.Interpreter())
	if r := strings.TrimSpace(p.Tool.Requirement); r != "" {
		inst.Requirement = r
	}
	return inst
}

// ProbeOptions returns the probe options implied by the [tool] section.
// Call Validate first; invalid values are ignored here.
func (p *Profile) ProbeOptions() []probe.Option {
	var opts []probe.Option
	if p.Tool.MinVersion != "" {
		if c, err := probe.ParseConstraint(p.Tool.MinVersion); err == nil {
			opts = append(opts, probe.WithConstraint(c))
		}
	}
	if d := durationOr(p.Tool.ProbeTimeout, 0); d > 0 {
		opts = append(opts, probe.WithTimeout(d))
	}
	return opts
}

// DrainInterval is the console poll cadence.
func (p *Profile) DrainInterval() time.Duration {
	return durationOr(p.Console.DrainInterval, logsink.DefaultPollInterval)
}

// HistoryEnabled reports whether sessions should be recorded.
func (p *Profile) HistoryEnabled() bool {
	return boolOr(p.History.Enabled, true)
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
