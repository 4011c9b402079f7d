package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/atlanticdynamic/exebuild/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_FollowUntilStatus(t *testing.T) {
	t.Parallel()

	buf := &testutil.ThreadSafeBuffer{}
	sink := logsink.New()
	r := New(buf, WithInterval(5*time.Millisecond))

	go func() {
		sink.Push(logsink.Info("s1", "Compilation started..."))
		sink.Push(logsink.Info("s1", "Command:\n  python3 -m PyInstaller app.py"))
		for _, l := range []string{"INFO: Analyzing", "INFO: Building EXE"} {
			time.Sleep(10 * time.Millisecond)
			sink.Push(logsink.Output("s1", l))
		}
		sink.Push(logsink.Terminal("s1", logsink.Status{Kind: logsink.StatusSuccess, Message: "Build finished."}))
	}()

	st, err := r.Follow(t.Context(), sink, "s1")
	require.NoError(t, err)
	assert.Equal(t, logsink.StatusSuccess, st.Kind)

	out := buf.String()
	order := []string{"Compilation started...", "Command:", "python3 -m PyInstaller app.py", "INFO: Analyzing", "INFO: Building EXE", "Build finished."}
	last := -1
	for _, want := range order {
		idx := strings.Index(out, want)
		require.GreaterOrEqual(t, idx, 0, want)
		assert.Greater(t, idx, last, "%q out of order", want)
		last = idx
	}
}

func TestRenderer_IgnoresOtherSessionStatus(t *testing.T) {
	t.Parallel()

	buf := &testutil.ThreadSafeBuffer{}
	sink := logsink.New()
	sink.Push(logsink.Terminal("old", logsink.Status{Kind: logsink.StatusFailure, ExitCode: 1, Message: "old run"}))
	sink.Push(logsink.Output("new", "working"))
	sink.Push(logsink.Terminal("new", logsink.Status{Kind: logsink.StatusCancelled, ExitCode: -1, Message: "stopped"}))

	st, err := New(buf, WithInterval(time.Millisecond)).Follow(t.Context(), sink, "new")
	require.NoError(t, err)
	assert.Equal(t, logsink.StatusCancelled, st.Kind)
	assert.Contains(t, buf.String(), "old run")
	assert.Contains(t, buf.String(), "working")
}

func TestRenderer_ContextEndsFirst(t *testing.T) {
	t.Parallel()

	buf := &testutil.ThreadSafeBuffer{}
	sink := logsink.New()
	sink.Push(logsink.Output("s", "partial"))

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	_, err := New(buf, WithInterval(time.Hour)).Follow(ctx, sink, "s")
	require.ErrorIs(t, err, ErrNoStatus)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, buf.String(), "partial", "queued lines are flushed on exit")
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	buf := &testutil.ThreadSafeBuffer{}
	r := New(buf, WithTimestamps(true))
	at := time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC)

	r.Render(logsink.Line{Kind: logsink.KindWarning, Text: "icon ignored", Time: at})
	r.Render(logsink.Line{Kind: logsink.KindError, Text: "launch failed", Time: at})
	r.Render(logsink.Terminal("s", logsink.Status{Kind: logsink.StatusFailure, ExitCode: 2, Message: "bad"}))

	out := buf.String()
	assert.Contains(t, out, "10:11:12")
	assert.Contains(t, out, "⚠ icon ignored")
	assert.Contains(t, out, "launch failed")
	assert.Contains(t, out, "failure (code 2): bad")
}
