package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the debouncer goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("people.json")
	assert.True(t, d.Pending())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "people.json", lastPath.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_BurstCoalesced(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(100*time.Millisecond, func(string) {
		callCount.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger("people.json")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_LastEventWins(t *testing.T) {
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("people.json")
	time.Sleep(10 * time.Millisecond)
	d.Trigger(".treetable.yaml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, ".treetable.yaml", lastPath.Load())
}

func TestDebouncer_SlowCallbacksDoNotOverlap(t *testing.T) {
	var (
		calls     atomic.Int32
		active    atomic.Int32
		maxActive atomic.Int32
	)

	d := NewDebouncer(10*time.Millisecond, func(string) {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}

		time.Sleep(80 * time.Millisecond)
		active.Add(-1)
		calls.Add(1)
	})
	defer d.Stop()

	d.Trigger("people.json")
	time.Sleep(30 * time.Millisecond)
	d.Trigger("people.json")

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(string) {
		callCount.Add(1)
	})

	d.Trigger("people.json")
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_PanicRecovered(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(20*time.Millisecond, func(string) {
		callCount.Add(1)
		panic("boom")
	})
	defer d.Stop()

	d.Trigger("a")
	time.Sleep(80 * time.Millisecond)
	d.Trigger("b")
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(2), callCount.Load())
}

// ---------------------------------------------------------------------------
// isRelevant / addFiles
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "people.json")
	targets := map[string]struct{}{data: {}}

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"write", data, fsnotify.Write, true},
		{"create", data, fsnotify.Create, true},
		{"rename", data, fsnotify.Rename, true},
		{"remove", data, fsnotify.Remove, false},
		{"chmod only", data, fsnotify.Chmod, false},
		{"zero op", data, 0, false},
		{"sibling file", filepath.Join(dir, "other.json"), fsnotify.Write, false},
		{"swap file", data + ".swp", fsnotify.Write, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: tt.op}
			assert.Equal(t, tt.want, isRelevant(event, targets))
		})
	}
}

func TestAddFiles_WatchesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "conf")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	data := filepath.Join(dir, "people.json")
	conf := filepath.Join(sub, ".treetable.yaml")
	require.NoError(t, os.WriteFile(data, []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(conf, []byte("query: bob"), 0o644))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	targets, err := addFiles(watcher, []string{data, conf})
	require.NoError(t, err)
	assert.Len(t, targets, 2)
	assert.ElementsMatch(t, []string{dir, sub}, watcher.WatchList())
}

func TestAddFiles_Errors(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	_, err = addFiles(watcher, nil)
	assert.ErrorContains(t, err, "no files given")

	_, err = addFiles(watcher, []string{"/nonexistent/people-12345.json"})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// reporter
// ---------------------------------------------------------------------------

func TestReporter_PrintsVisibilityChanges(t *testing.T) {
	var out bytes.Buffer

	r := &reporter{out: &out}
	results := []*RunResult{
		{Total: 3, Visible: []string{"0", "1", "2"}},
		{Total: 3, Visible: []string{"0", "2"}, Matched: 1},
	}

	call := 0
	runFn := func(context.Context) (*RunResult, error) {
		res := results[call]
		call++

		return res, nil
	}

	r.run(context.Background(), runFn, "(initial)")
	assert.Contains(t, out.String(), "(initial) → OK (3 rows, 3 visible, 0 matched)")
	assert.NotContains(t, out.String(), "rows:")

	r.run(context.Background(), runFn, "people.json")
	assert.Contains(t, out.String(), "people.json → OK (3 rows, 2 visible, 1 matched)")
	assert.Contains(t, out.String(), "rows: +0 row(s) shown, -1 row(s) hidden")
	assert.Contains(t, out.String(), "    - 1\n")
}

func TestReporter_ErrorKeepsPreviousState(t *testing.T) {
	var out bytes.Buffer

	r := &reporter{out: &out}

	r.run(context.Background(), func(context.Context) (*RunResult, error) {
		return &RunResult{Visible: []string{"0"}}, nil
	}, "(initial)")

	r.run(context.Background(), func(context.Context) (*RunResult, error) {
		return nil, errors.New("decoding YAML document 1")
	}, "people.yaml")

	assert.Contains(t, out.String(), "people.yaml → ERROR: decoding YAML document 1")
	assert.Equal(t, []string{"0"}, r.prev)
}

// ---------------------------------------------------------------------------
// Run (integration)
// ---------------------------------------------------------------------------

func TestRun_GracefulShutdown(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "people.json")
	require.NoError(t, os.WriteFile(data, []byte("[]"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.Files = []string{data}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(context.Context) (*RunResult, error) {
			runCount.Add(1)
			return &RunResult{}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runCount.Load())

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_FileChangeTriggersRerun(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "people.json")
	require.NoError(t, os.WriteFile(data, []byte("[]"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runCount atomic.Int32

	out := &syncBuffer{}
	opts := DefaultOptions()
	opts.Files = []string{data}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = out

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(context.Context) (*RunResult, error) {
			runCount.Add(1)
			return &RunResult{Total: 1, Visible: []string{"0"}}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	initialRuns := runCount.Load()

	require.NoError(t, os.WriteFile(data, []byte(`[{"firstName":"bob"}]`), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Greater(t, runCount.Load(), initialRuns, "file change should trigger a re-run")
	assert.Contains(t, out.String(), "watching "+data)
	assert.Contains(t, out.String(), "no visibility changes")

	cancel()
	<-done
}

func TestRun_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "people.json")
	require.NoError(t, os.WriteFile(data, []byte("[]"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.Files = []string{data}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(context.Context) (*RunResult, error) {
			runCount.Add(1)
			return &RunResult{}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(1), runCount.Load())

	cancel()
	<-done
}

func TestRun_MissingFile(t *testing.T) {
	opts := DefaultOptions()
	opts.Files = []string{"/nonexistent/people-12345.json"}
	opts.Out = io.Discard

	err := Run(context.Background(), opts, func(context.Context) (*RunResult, error) {
		return &RunResult{}, nil
	})
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 300*time.Millisecond, opts.Debounce)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Out)
}
