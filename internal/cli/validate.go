package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/treetable/internal/dataset"
)

func newValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <data-file>",
		Short: "Validate a data file",
		Long: `Validate checks that a data file can be loaded and that its records
form a well-shaped tree: sub-rows must be lists of records, skipFilter
must be a boolean and stored columns must be well formed.

Exit codes:
  0  Valid
  1  Errors found (or warnings with --strict)
  2  Invalid arguments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := dataset.Validate(doc)

			if len(result.Findings) > 0 {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), dataset.FormatValidationResult(result))
			}

			if result.HasErrors() {
				return &ExitError{Code: exitRuntime, Err: fmt.Errorf("validation failed with %d error(s)", len(result.Errors()))}
			}

			if strict && len(result.Warnings()) > 0 {
				return &ExitError{Code: exitRuntime, Err: fmt.Errorf("validation failed with %d warning(s) in strict mode", len(result.Warnings()))}
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}
