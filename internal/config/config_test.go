package config

import (
	"embed"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/atlanticdynamic/exebuild/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/*.toml
var fixtures embed.FS

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := fixtures.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestLoad_Full(t *testing.T) {
	t.Parallel()

	p, err := NewProfile(filepath.Join("testdata", "full.toml"))
	require.NoError(t, err)

	dir, err := filepath.Abs("testdata")
	require.NoError(t, err)
	assert.Equal(t, dir, p.Dir())

	cfg := p.ToBuildConfig()
	assert.Equal(t, filepath.Join(dir, "app", "main.py"), cfg.ScriptPath)
	assert.Equal(t, "Inventory Tool", cfg.OutputName)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(dir, "assets", "app.ico"), cfg.IconPath)
	assert.False(t, cfg.OneFile)
	assert.True(t, cfg.Windowed)
	assert.True(t, cfg.Clean, "unset booleans default to true")
	assert.True(t, cfg.NoConfirm)

	require.Len(t, cfg.DataMappings, 2)
	assert.Equal(t, build.DataMapping{Source: filepath.Join(dir, "assets", "logo.png"), Destination: "assets"}, cfg.DataMappings[0])
	assert.Equal(t, filepath.Join(dir, "templates"), cfg.DataMappings[1].Source)
	assert.Equal(t, build.DefaultDestination(filepath.Join(dir, "templates")), cfg.DataMappings[1].Destination)

	assert.Equal(t, "python3.12", p.Interpreter())
	assert.Equal(t, []string{"python3.12", "-m", "PyInstaller"}, p.Launcher())
	assert.Equal(t, p.Launcher(), p.Builder().Launcher)
	assert.NotEmpty(t, p.Builder().DataSeparator)
	assert.Equal(t, []string{"python3.12", "-m", "pip", "install", "pyinstaller>=6.0"}, p.Installer().Command().Tokens)
	assert.Len(t, p.ProbeOptions(), 2)
	assert.Equal(t, 100*time.Millisecond, p.DrainInterval())
	assert.True(t, p.HistoryEnabled())
	assert.Equal(t, 50, p.History.Keep)
	assert.Equal(t, "debug", p.Logging.Level)
	assert.Equal(t, "json", p.Logging.Format)
}

func TestLoadBytes_MinimalDefaults(t *testing.T) {
	t.Parallel()

	p, err := LoadBytes(fixture(t, "minimal.toml"))
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	assert.Equal(t, VersionLatest, p.Version)
	assert.Empty(t, p.Dir())

	cfg := p.ToBuildConfig()
	assert.Equal(t, "hello.py", cfg.ScriptPath, "relative paths stay relative without a file location")
	assert.Equal(t, "hello", cfg.OutputName, "name defaults to the script base name")
	assert.True(t, cfg.OneFile)
	assert.True(t, cfg.Windowed)
	assert.Empty(t, cfg.DataMappings)

	assert.Equal(t, build.DefaultInterpreter(), p.Interpreter())
	assert.Equal(t, probe.DefaultRequirement, p.Installer().Requirement)
	assert.Empty(t, p.ProbeOptions())
	assert.Equal(t, logsink.DefaultPollInterval, p.DrainInterval())
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "wrong extension", path: filepath.Join("testdata", "full.yaml"), wantErr: ErrUnsupportedFormat},
		{name: "missing file", path: filepath.Join("testdata", "nope.toml"), wantErr: ErrFailedToLoadConfig},
		{name: "unknown key", path: filepath.Join("testdata", "unknown_key.toml"), wantErr: ErrParseToml},
		{name: "syntax error", path: filepath.Join("testdata", "broken.toml"), wantErr: ErrParseToml},
		{name: "future version", path: filepath.Join("testdata", "future.toml"), wantErr: ErrUnsupportedConfigVer},
		{name: "invalid values", path: filepath.Join("testdata", "invalid_values.toml"), wantErr: ErrFailedToValidateConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfile(tt.path)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

func TestLoadBytes_SyntaxErrorPosition(t *testing.T) {
	t.Parallel()
	_, err := LoadBytes(fixture(t, "broken.toml"))
	require.ErrorIs(t, err, ErrParseToml)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadReader(t *testing.T) {
	t.Parallel()
	p, err := LoadReader(strings.NewReader("[build]\nscript = \"tool.py\"\nname = \"Tool\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "Tool", p.ToBuildConfig().OutputName)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	t.Parallel()

	p, err := LoadBytes(fixture(t, "invalid_values.toml"))
	require.NoError(t, err)

	err = p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	assert.ErrorIs(t, err, ErrInvalidValue)

	msg := err.Error()
	for _, field := range []string{
		"data[0].source",
		"tool.min_version",
		"tool.probe_timeout",
		"console.drain_interval",
		"logging.level",
		"logging.format",
		"history.keep",
	} {
		assert.Contains(t, msg, field)
	}

	// invalid durations fall back to defaults instead of breaking the run
	assert.Equal(t, logsink.DefaultPollInterval, p.DrainInterval())
	assert.Empty(t, p.ProbeOptions())
}

func TestValidate_Version(t *testing.T) {
	t.Parallel()

	p := &Profile{}
	require.ErrorIs(t, p.Validate(), ErrUnsupportedConfigVer)
	assert.Equal(t, VersionUnknown, p.Version)

	assert.NoError(t, Default().Validate())
}

func TestHistoryDisabled(t *testing.T) {
	t.Parallel()
	p, err := LoadBytes([]byte("[history]\nenabled = false\n"))
	require.NoError(t, err)
	assert.False(t, p.HistoryEnabled())
}

func TestProfileString(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join("testdata", "full.toml"))
	require.NoError(t, err)

	out := p.String()
	for _, want := range []string{
		"Build Profile (v1)",
		"Build",
		"Inventory Tool",
		"OneFile: false",
		"Data",
		"(2)",
		"logo.png -> assets",
		"Tool",
		"python3.12",
		"pip install",
		"MinVersion: >= 6.0",
		"Logging",
		"Format: json",
		"History",
		"Keep: 50",
	} {
		assert.Contains(t, out, want)
	}

	empty := Default().String()
	assert.Contains(t, empty, "Script: (none)")
	assert.Contains(t, empty, "(0)")
}
