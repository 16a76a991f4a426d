package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/treetable/internal/diff"
)

// InitialTrigger is the trigger of the first run, before any file changed.
const InitialTrigger = "(initial)"

// RunFunc is called each time the watcher triggers a re-run. It returns the
// visible row ids of the pass.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the outcome of one pass.
type RunResult struct {
	Total   int
	Visible []string
	Matched int
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the files to watch (the data file, optionally a config file).
	Files []string

	// Debounce is the quiet period before triggering a re-run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run runs runFn once, then again after every change to the watched files,
// printing a status line and the visibility changes since the previous
// run. It blocks until the context is cancelled or a SIGINT/SIGTERM signal
// is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := &reporter{out: opts.Out}

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	return Watch(sigCtx, opts, func(ctx context.Context, trigger string) {
		r.run(ctx, runFn, trigger)
	})
}

// Watch calls onChange once with [InitialTrigger] and then with the
// path of the last changed file after each debounced burst of events. It
// returns nil when ctx is done.
func Watch(ctx context.Context, opts Options, onChange func(ctx context.Context, trigger string)) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // shutdown

	targets, err := addFiles(watcher, opts.Files)
	if err != nil {
		return err
	}

	onChange(ctx, InitialTrigger)

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		if ctx.Err() == nil {
			onChange(ctx, path)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, targets) {
				continue
			}

			opts.Logger.Debug("file changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addFiles watches the directory of every file and returns the set of
// absolute file paths that count as relevant.
func addFiles(watcher *fsnotify.Watcher, files []string) (map[string]struct{}, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watching files: no files given")
	}

	targets := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("watching files: %w", err)
		}

		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	return targets, nil
}

// isRelevant keeps write, create and rename events on watched files.
// Removals are ignored: an atomic save shows up as a create of the target.
func isRelevant(event fsnotify.Event, targets map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	_, ok := targets[abs]

	return ok
}

// reporter prints one status line per run plus the visibility changes
// relative to the previous successful run.
type reporter struct {
	out  io.Writer
	prev []string
	ran  bool
}

func (r *reporter) run(ctx context.Context, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(r.out, "[%s] %s → OK (%d rows, %d visible, %d matched)\n",
		now, trigger, result.Total, len(result.Visible), result.Matched)

	if r.ran {
		changes := diff.Visibility(r.prev, result.Visible)
		fmt.Fprintf(r.out, "  rows: %s\n", diff.Summary(changes))

		for _, c := range changes {
			sign := "+"
			if c.Kind == diff.Hidden {
				sign = "-"
			}

			fmt.Fprintf(r.out, "    %s %s\n", sign, c.ID)
		}
	}

	r.prev = result.Visible
	r.ran = true
}
