package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := writeFile(t, dir, "app.py")

	tests := []struct {
		name    string
		script  string
		wantErr error
	}{
		{name: "existing file", script: script},
		{name: "surrounding whitespace", script: "  " + script + " "},
		{name: "empty", script: "", wantErr: ErrScriptMissing},
		{name: "blank", script: "   ", wantErr: ErrScriptMissing},
		{name: "missing", script: filepath.Join(dir, "nope.py"), wantErr: ErrScriptMissing},
		{name: "directory", script: dir, wantErr: ErrScriptNotFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{ScriptPath: tt.script}.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Names(t *testing.T) {
	t.Parallel()
	cfg := Config{ScriptPath: filepath.Join("src", "my app.py")}
	assert.Equal(t, "my app", cfg.DefaultName())
	assert.Equal(t, "my app", cfg.EffectiveName())

	cfg.OutputName = " Tool "
	assert.Equal(t, "Tool", cfg.EffectiveName())

	assert.Empty(t, Config{}.DefaultName())
}

func TestDefaultDestination(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(images, 0o755))
	file := writeFile(t, images, "logo.png")

	assert.Equal(t, "images", DefaultDestination(images))
	assert.Equal(t, "images", DefaultDestination(file))
	assert.Equal(t, "data", DefaultDestination("logo.png"))
}

func TestCommandLine(t *testing.T) {
	t.Parallel()
	cmd := NewCommandLine("python", "-m", "PyInstaller", "my script.py", "")
	assert.Equal(t, `python -m PyInstaller "my script.py" `, cmd.Preview)
	assert.Equal(t, "python", cmd.Name())
	assert.Equal(t, []string{"-m", "PyInstaller", "my script.py", ""}, cmd.Args())
	assert.False(t, cmd.IsEmpty())
	assert.Equal(t, cmd.Preview, cmd.String())

	empty := NewCommandLine()
	assert.True(t, empty.IsEmpty())
	assert.Empty(t, empty.Name())
	assert.Nil(t, empty.Args())

	tab := RenderPreview([]string{"a\tb"})
	assert.Equal(t, "\"a\tb\"", tab)
}
