package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/treetable/internal/config"
	"github.com/hupe1980/treetable/internal/logging"
	"github.com/hupe1980/treetable/internal/render"
	"github.com/hupe1980/treetable/internal/row"
	"github.com/hupe1980/treetable/internal/watch"
)

type watchOptions struct {
	print bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <data-file>",
		Short: "Re-run the filter whenever the data file changes",
		Long: `Watch runs the filter once and again after every change to the data
file or the config file. Each run prints a status line and the rows that
became visible or hidden since the previous run.

Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	registerTableFlags(cmd)
	registerWatchFlags(cmd)

	cmd.Flags().BoolVar(&opts.print, "print", false, "print the table after every run")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, opts *watchOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	out := cmd.OutOrStdout()

	runFn := func(ctx context.Context) (*watch.RunResult, error) {
		doc, err := loadDocument(ctx, path)
		if err != nil {
			return nil, err
		}

		cols, err := resolveColumns(cfg, doc)
		if err != nil {
			return nil, err
		}

		query, err := filterValue(cfg)
		if err != nil {
			return nil, err
		}

		view, err := computeView(ctx, cfg, doc, cols, query)
		if err != nil {
			return nil, err
		}

		logger.Debug("watch pass completed",
			slog.Int("records", len(doc.Records)),
			slog.Int("visible", len(view.Visible)),
		)

		if opts.print {
			renderOpts := renderOptions(cfg, out)
			renderOpts.Matched = view.MatchedIDs

			if err := render.Table(out, cols, view.Visible, view.Expanded, renderOpts); err != nil {
				return nil, err
			}
		}

		return &watch.RunResult{
			Total:   row.Count(view.PreFilterRows),
			Visible: visibleIDs(view),
			Matched: len(view.MatchedIDs),
		}, nil
	}

	files := []string{path}
	if cfg.ConfigFile != "" {
		files = append(files, cfg.ConfigFile)
	}

	watchOpts := watch.Options{
		Files:    files,
		Debounce: cfg.Debounce,
		Logger:   logger,
		Out:      cmd.ErrOrStderr(),
	}

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	return nil
}
