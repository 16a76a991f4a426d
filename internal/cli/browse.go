package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/treetable/internal/config"
	"github.com/hupe1980/treetable/internal/dataset"
	"github.com/hupe1980/treetable/internal/filter"
	"github.com/hupe1980/treetable/internal/logging"
	"github.com/hupe1980/treetable/internal/tui"
	"github.com/hupe1980/treetable/internal/watch"
)

type browseOptions struct {
	watch   bool
	seed    uint64
	logFile string
}

func newBrowseCommand() *cobra.Command {
	opts := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse [data-file]",
		Short: "Browse a data file interactively",
		Long: `Browse opens the interactive table. Type to filter, move with the
arrow keys, press enter to expand or collapse the selected row and ctrl+e
to expand or collapse everything. ctrl+s shows the expanded state.

Without a data file a deterministic sample data set is shown. With --watch
the table reloads whenever the data file changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			return runBrowse(cmd, path, opts)
		},
	}

	registerTableFlags(cmd)
	registerWatchFlags(cmd)

	f := cmd.Flags()
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload when the data file changes")
	f.Uint64Var(&opts.seed, "seed", 1, "seed of the sample data set")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file while the browser runs")

	return cmd
}

// browseModel builds the browser model for path, or for sample data when
// path is empty.
func browseModel(ctx context.Context, cfg *config.Config, path string, opts *browseOptions, logger *slog.Logger) (*tui.Model, error) {
	doc := &dataset.Document{Records: dataset.Generate(opts.seed, 10, 3, 2)}

	if path != "" {
		loaded, err := loadDocument(ctx, path)
		if err != nil {
			return nil, err
		}

		doc = loaded
	}

	cols, err := resolveColumns(cfg, doc)
	if err != nil {
		return nil, err
	}

	pre, err := prefilters(cfg)
	if err != nil {
		return nil, err
	}

	// The search box holds the text query, so a jq predicate runs ahead of it.
	if cfg.JQ != "" {
		q, err := filterValue(cfg)
		if err != nil {
			return nil, err
		}

		pre = append(pre, filter.NewJQFilter(q.(*filter.JQ)))
	}

	m := tui.New(ctx, tui.Options{
		Data:         doc.Records,
		Columns:      cols,
		Prefilters:   pre,
		Query:        cfg.Query,
		ExpandAll:    cfg.ExpandAll,
		AutoExpand:   cfg.AutoExpand,
		Theme:        themeFor(cfg, os.Stdout),
		MaxCellWidth: cfg.MaxCellWidth,
		Logger:       logger,
	})

	if err := m.Err(); err != nil {
		return nil, computeError(err)
	}

	return m, nil
}

func runBrowse(cmd *cobra.Command, path string, opts *browseOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg := config.FromContext(ctx)

	if opts.watch && path == "" {
		return &ExitError{Code: exitBadInput, Err: fmt.Errorf("--watch requires a data file")}
	}

	logger, closeLog, err := logging.SetupForTUI(cfg, opts.logFile)
	if err != nil {
		return &ExitError{Code: exitBadInput, Err: err}
	}

	defer closeLog() //nolint:errcheck // log file

	m, err := browseModel(ctx, cfg, path, opts, logger)
	if err != nil {
		return err
	}

	var reloads chan tui.ReloadMsg

	g, gctx := errgroup.WithContext(ctx)

	if opts.watch {
		reloads = make(chan tui.ReloadMsg, 1)

		g.Go(func() error {
			watchOpts := watch.Options{Files: []string{path}, Debounce: cfg.Debounce, Logger: logger}

			err := watch.Watch(gctx, watchOpts, func(ctx context.Context, trigger string) {
				if trigger == watch.InitialTrigger {
					return
				}

				msg := tui.ReloadMsg{}

				doc, err := dataset.Load(ctx, path)
				if err != nil {
					msg.Err = err
				} else {
					msg.Data = doc.Records
				}

				select {
				case reloads <- msg:
				case <-ctx.Done():
				}
			})
			if err != nil {
				return fmt.Errorf("watching data file: %w", err)
			}

			return nil
		})
	}

	// Leaving the browser stops the watcher; a failing watcher closes the
	// browser.
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx, m, reloads)
	})

	if err := g.Wait(); err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	return nil
}
