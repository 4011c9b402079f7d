package runner

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures pushed lines and signals when a line matching
// waitFor arrives.
type recordingSink struct {
	mu      sync.Mutex
	lines   []logsink.Line
	waitFor string
	seen    chan struct{}
	once    sync.Once
}

func newRecordingSink(waitFor string) *recordingSink {
	return &recordingSink{waitFor: waitFor, seen: make(chan struct{})}
}

func (s *recordingSink) Push(line logsink.Line) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
	if s.waitFor != "" && line.Text == s.waitFor {
		s.once.Do(func() { close(s.seen) })
	}
}

func (s *recordingSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Text
	}
	return out
}

func (s *recordingSink) snapshot() []logsink.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logsink.Line(nil), s.lines...)
}

func shell(script string) build.CommandLine {
	return build.NewCommandLine("/bin/sh", "-c", script)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestRunner_CompletedMergedOrder(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := New()
	sink := newRecordingSink("")
	out := r.Run(t.Context(), shell("echo one; echo two 1>&2; printf 'three\\r\\n'; printf 'four'"), sink, NewToken())

	assert.Equal(t, Completed, out.Kind)
	assert.Equal(t, 0, out.ExitCode)
	assert.NoError(t, out.Err)
	assert.True(t, out.Success())
	assert.Equal(t, []string{"one", "two", "three", "four"}, sink.texts())
	for _, l := range sink.snapshot() {
		assert.Equal(t, logsink.KindOutput, l.Kind)
	}
	assert.False(t, r.Active())
	assert.Equal(t, 0, r.PID())
}

func TestRunner_NonzeroExit(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	out := New().Run(t.Context(), shell("echo failing; exit 3"), newRecordingSink(""), nil)
	assert.Equal(t, Completed, out.Kind)
	assert.Equal(t, 3, out.ExitCode)
	assert.False(t, out.Success())
}

func TestRunner_LaunchFailed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  build.CommandLine
	}{
		{name: "missing executable", cmd: build.NewCommandLine("definitely-not-a-real-binary-6f1c", "--version")},
		{name: "empty command", cmd: build.NewCommandLine()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			sink := newRecordingSink("")
			out := r.Run(t.Context(), tt.cmd, sink, NewToken())

			assert.Equal(t, LaunchFailed, out.Kind)
			assert.Equal(t, -1, out.ExitCode)
			require.Error(t, out.Err)
			assert.ErrorIs(t, out.Err, ErrLaunch)

			lines := sink.snapshot()
			require.Len(t, lines, 1)
			assert.Equal(t, logsink.KindError, lines[0].Kind)
			assert.False(t, r.Active())
		})
	}
}

func TestRunner_CancelSilentChild(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := New()
	token := NewToken()
	sink := newRecordingSink("")

	go func() {
		time.Sleep(50 * time.Millisecond)
		token.Request()
	}()

	start := time.Now()
	out := r.Run(t.Context(), shell("exec sleep 10"), sink, token)

	assert.Equal(t, Cancelled, out.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, r.Active())
}

func TestRunner_CancelDrainsCleanupOutput(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := New()
	token := NewToken()
	sink := newRecordingSink("ready")

	script := `trap 'echo cleanup; exit 0' TERM; echo ready; while true; do sleep 0.05; done`
	done := make(chan Outcome, 1)
	go func() {
		done <- r.Run(t.Context(), shell(script), sink, token)
	}()

	select {
	case <-sink.seen:
	case <-time.After(5 * time.Second):
		t.Fatal("child never became ready")
	}
	assert.True(t, r.Active())
	assert.NotZero(t, r.PID())
	token.Request()
	token.Request()

	select {
	case out := <-done:
		assert.Equal(t, Cancelled, out.Kind, "cancel wins even when the child exits 0")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish after cancel")
	}
	assert.Equal(t, []string{"ready", "cleanup"}, sink.texts())
}

func TestRunner_ContextCancel(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(50*time.Millisecond, cancel)

	out := New().Run(ctx, shell("exec sleep 10"), newRecordingSink(""), NewToken())
	assert.Equal(t, Cancelled, out.Kind)
}

func TestRunner_DrainGraceWithLingeringGrandchild(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := New(WithDrainGrace(100 * time.Millisecond))
	sink := newRecordingSink("")

	start := time.Now()
	out := r.Run(t.Context(), shell("sleep 5 & echo bye"), sink, NewToken())

	assert.Equal(t, Completed, out.Kind)
	assert.Equal(t, 0, out.ExitCode)
	assert.Contains(t, sink.texts(), "bye")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_DirAndEnv(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	r := New(WithDir(dir), WithEnv("EXEBUILD_TEST_VALUE=hello"))
	sink := newRecordingSink("")
	out := r.Run(t.Context(), shell(`pwd; echo "$EXEBUILD_TEST_VALUE"`), sink, nil)

	require.Equal(t, Completed, out.Kind)
	texts := sink.texts()
	require.Len(t, texts, 2)
	assert.True(t, strings.HasSuffix(texts[0], strings.TrimPrefix(dir, "/private")))
	assert.Equal(t, "hello", texts[1])
}

func TestRunner_InvalidUTF8(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	sink := newRecordingSink("")
	out := New().Run(t.Context(), shell(`printf 'ok\377\n'`), sink, nil)
	require.Equal(t, Completed, out.Kind)
	assert.Equal(t, []string{"ok�"}, sink.texts())
}

func TestRunner_LongLineIsSplit(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	sink := newRecordingSink("")
	out := New().Run(t.Context(), shell(`head -c 150000 /dev/zero | tr '\000' x; echo; echo tail`), sink, nil)
	require.Equal(t, Completed, out.Kind)

	texts := sink.texts()
	require.Len(t, texts, 4)
	assert.Len(t, texts[0], MaxLineLength)
	assert.Len(t, texts[1], MaxLineLength)
	assert.Len(t, texts[2], 150000-2*MaxLineLength)
	assert.Equal(t, "tail", texts[3])
	assert.Equal(t, strings.Repeat("x", 150000), texts[0]+texts[1]+texts[2])
}

func TestToken(t *testing.T) {
	t.Parallel()
	tok := NewToken()
	assert.False(t, tok.Requested())
	select {
	case <-tok.Done():
		t.Fatal("done before request")
	default:
	}

	tok.Request()
	tok.Request()
	assert.True(t, tok.Requested())
	select {
	case <-tok.Done():
	default:
		t.Fatal("done not closed after request")
	}
}

func TestOutcomeKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "launch_failed", LaunchFailed.String())
	assert.Equal(t, "outcome(9)", OutcomeKind(9).String())
}
