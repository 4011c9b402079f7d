package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOutput(out string, err error) outputFunc {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare", input: "6.3.0\n", want: "6.3.0"},
		{name: "prefixed", input: "PyInstaller v5.13.2", want: "5.13.2"},
		{name: "two parts", input: "4.10", want: "4.10.0"},
		{name: "garbage", input: "Traceback (most recent call last)", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrVersionUnparsable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestToolProbe_ArgsAndTimeout(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	var hadDeadline bool
	p := NewToolProbe([]string{"python3", "-m", "PyInstaller"}, WithTimeout(time.Second))
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		_, hadDeadline = ctx.Deadline()
		return []byte("6.3.0"), nil
	}

	assert.True(t, p.IsAvailable(t.Context()))
	assert.Equal(t, "python3", gotName)
	assert.Equal(t, []string{"-m", "PyInstaller", "--version"}, gotArgs)
	assert.True(t, hadDeadline)
}

func TestToolProbe_Availability(t *testing.T) {
	t.Parallel()

	atLeast6, err := ParseConstraint(">= 6.0")
	require.NoError(t, err)

	tests := []struct {
		name       string
		launcher   []string
		out        string
		runErr     error
		constraint bool
		want       bool
		wantErr    error
	}{
		{name: "present", launcher: []string{"pyinstaller"}, out: "6.3.0", want: true},
		{name: "missing", launcher: []string{"pyinstaller"}, runErr: errors.New("exit status 1"), want: false, wantErr: ErrToolMissing},
		{name: "empty launcher", want: false, wantErr: ErrEmptyLauncher},
		{name: "unparsable without constraint", launcher: []string{"pyinstaller"}, out: "dev", want: true},
		{name: "unparsable with constraint", launcher: []string{"pyinstaller"}, out: "dev", constraint: true, want: false, wantErr: ErrVersionUnparsable},
		{name: "too old", launcher: []string{"pyinstaller"}, out: "5.13.2", constraint: true, want: false, wantErr: ErrVersionTooOld},
		{name: "new enough", launcher: []string{"pyinstaller"}, out: "6.1.0", constraint: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.constraint {
				opts = append(opts, WithConstraint(atLeast6))
			}
			p := NewToolProbe(tt.launcher, opts...)
			p.run = fakeOutput(tt.out, tt.runErr)

			assert.Equal(t, tt.want, p.IsAvailable(t.Context()))
			_, err := p.Check(t.Context())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToolProbe_RealProcess(t *testing.T) {
	t.Parallel()
	if _, err := combinedOutput(t.Context(), "/bin/sh", "-c", "true"); err != nil {
		t.Skip("requires /bin/sh")
	}

	ok := NewToolProbe([]string{"/bin/sh", "-c", "echo 6.3.0", "--"})
	v, err := ok.Version(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "6.3.0", v.String())

	failing := NewToolProbe([]string{"/bin/sh", "-c", "exit 1", "--"})
	assert.False(t, failing.IsAvailable(t.Context()))

	notFound := NewToolProbe([]string{"definitely-not-a-real-binary-6f1c"})
	assert.False(t, notFound.IsAvailable(t.Context()))
}

func TestToolProbe_CancelEndsLingeringCheck(t *testing.T) {
	t.Parallel()
	if _, err := combinedOutput(t.Context(), "/bin/sh", "-c", "true"); err != nil {
		t.Skip("requires /bin/sh")
	}

	// the shell forks sleep, which keeps the output pipe open after the kill
	p := NewToolProbe([]string{"/bin/sh", "-c", "sleep 3; echo 6.3.0", "--"})
	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	assert.False(t, p.IsAvailable(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestParseConstraint_Invalid(t *testing.T) {
	t.Parallel()
	_, err := ParseConstraint("not a constraint !!")
	require.ErrorIs(t, err, ErrInvalidConstraint)
}

func TestStatic(t *testing.T) {
	t.Parallel()
	assert.True(t, Static(true).IsAvailable(t.Context()))
	assert.False(t, Static(false).IsAvailable(t.Context()))
}

func TestInstaller_Command(t *testing.T) {
	t.Parallel()

	cmd := NewInstaller("python3").Command()
	assert.Equal(t, []string{"python3", "-m", "pip", "install", "pyinstaller"}, cmd.Tokens)

	custom := Installer{Interpreter: "py", Requirement: "pyinstaller>=6.0", ExtraArgs: []string{"--user"}}
	assert.Equal(t, []string{"py", "-m", "pip", "install", "--user", "pyinstaller>=6.0"}, custom.Command().Tokens)

	empty := Installer{}.Command()
	require.Len(t, empty.Tokens, 5)
	assert.Equal(t, DefaultRequirement, empty.Tokens[4])
	assert.NotEmpty(t, empty.Tokens[0])

	assert.Contains(t, NewInstaller("python3").Hint(), "python3 -m pip install pyinstaller")
}
