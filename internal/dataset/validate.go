package dataset

import (
	"fmt"
	"strings"

	"github.com/hupe1980/treetable/internal/row"
	"github.com/hupe1980/treetable/internal/table"
)

// ValidationSeverity indicates the severity of a validation finding.
type ValidationSeverity int

const (
	// SeverityError means the document cannot be displayed as intended.
	SeverityError ValidationSeverity = iota
	// SeverityWarning means the document may not behave as expected.
	SeverityWarning
)

// String returns the severity name.
func (s ValidationSeverity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// ValidationFinding is a single validation issue.
type ValidationFinding struct {
	Severity ValidationSeverity
	Field    string
	Message  string
}

// Error implements the error interface.
func (f *ValidationFinding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Field, f.Message)
}

// ValidationResult holds all findings from a validation run.
type ValidationResult struct {
	Findings []ValidationFinding
}

// Errors returns only error-severity findings.
func (r *ValidationResult) Errors() []ValidationFinding {
	return r.filter(SeverityError)
}

// Warnings returns only warning-severity findings.
func (r *ValidationResult) Warnings() []ValidationFinding {
	return r.filter(SeverityWarning)
}

// HasErrors returns true if any error-severity findings exist.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors()) > 0
}

func (r *ValidationResult) filter(s ValidationSeverity) []ValidationFinding {
	var out []ValidationFinding

	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}

	return out
}

// Validate checks a document's records and columns: subRows must be lists
// of objects, skipFilter must be a boolean, and the column layout must be
// valid.
func Validate(doc *Document) *ValidationResult {
	v := &validator{}

	if doc.Columns != nil {
		if err := table.ValidateColumns(doc.Columns); err != nil {
			v.addError("columns", err.Error())
		}
	}

	v.records("records", doc.Records)

	return &v.result
}

type validator struct {
	result ValidationResult
}

func (v *validator) addError(field, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: SeverityError,
		Field:    field,
		Message:  msg,
	})
}

func (v *validator) addWarning(field, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: SeverityWarning,
		Field:    field,
		Message:  msg,
	})
}

func (v *validator) records(prefix string, recs []map[string]any) {
	for i, rec := range recs {
		field := fmt.Sprintf("%s[%d]", prefix, i)

		if len(rec) == 0 {
			v.addWarning(field, "record is empty")
			continue
		}

		if skip, ok := rec[row.SkipFilterKey]; ok {
			if _, isBool := skip.(bool); !isBool {
				v.addWarning(field+"."+row.SkipFilterKey,
					fmt.Sprintf("is %T; only the boolean true keeps the row visible", skip))
			}
		}

		raw, ok := rec[table.SubRowsKey]
		if !ok || raw == nil {
			continue
		}

		list, isList := raw.([]any)
		if !isList {
			v.addError(field+"."+table.SubRowsKey, fmt.Sprintf("must be a list, got %T", raw))
			continue
		}

		children := make([]map[string]any, 0, len(list))

		for j, item := range list {
			m, isMap := item.(map[string]any)
			if !isMap {
				v.addError(fmt.Sprintf("%s.%s[%d]", field, table.SubRowsKey, j),
					fmt.Sprintf("must be an object, got %T", item))

				continue
			}

			children = append(children, m)
		}

		v.records(field+"."+table.SubRowsKey, children)
	}
}

// FormatValidationResult returns a human-readable string of all findings.
func FormatValidationResult(result *ValidationResult) string {
	if len(result.Findings) == 0 {
		return "Validation passed: no issues found."
	}

	var sb strings.Builder

	errs := result.Errors()
	warnings := result.Warnings()

	if len(errs) > 0 {
		_, _ = fmt.Fprintf(&sb, "Errors (%d):\n", len(errs))

		for _, f := range errs {
			_, _ = fmt.Fprintf(&sb, "  - %s: %s\n", f.Field, f.Message)
		}
	}

	if len(warnings) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}

		_, _ = fmt.Fprintf(&sb, "Warnings (%d):\n", len(warnings))

		for _, f := range warnings {
			_, _ = fmt.Fprintf(&sb, "  - %s: %s\n", f.Field, f.Message)
		}
	}

	return sb.String()
}
