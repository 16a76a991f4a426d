package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/treetable/internal/config"
)

// registerTableFlags adds the table settings shared by every command that
// builds a table. The flags are bound by config.Load, so their values are
// read back from the config in the command context.
func registerTableFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("query", "", "global filter query")
	f.String("jq", "", `filter with a jq predicate on each record, e.g. '.age > 30'`)
	f.StringSlice("columns", nil, "flat column layout as a list of accessors")
	f.Bool("expand-all", false, "start with every row expanded")
	f.Bool("auto-expand", false, "expand the ancestors of matched rows")
	f.Int("max-cell-width", config.DefaultMaxCellWidth, "maximum width of a table cell")
	f.StringArray("exclude", nil, `drop rows matching a selector, e.g. "status=single" (repeatable)`)
	f.Int("max-depth", -1, "drop rows nested deeper than this (-1 = unlimited)")
}

// registerWatchFlags adds the file watching flags.
func registerWatchFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("debounce", config.DefaultDebounce, "debounce interval for file changes")
}
