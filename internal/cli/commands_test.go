package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/treetable/internal/output"
)

const peopleJSON = `[
  {"firstName": "Alice", "lastName": "Smith", "subRows": [
    {"firstName": "Bob", "lastName": "Jones"}
  ]},
  {"firstName": "Erin", "lastName": "Stone"}
]`

func decodeDocument(t *testing.T, data string) *output.Document {
	t.Helper()

	var doc output.Document
	require.NoError(t, json.Unmarshal([]byte(data), &doc))

	return &doc
}

// ---------------------------------------------------------------------------
// Argument validation
// ---------------------------------------------------------------------------

func TestCommands_RequireDataFile(t *testing.T) {
	for _, sub := range []string{"filter", "diff", "watch", "validate"} {
		t.Run(sub, func(t *testing.T) {
			_, _, err := executeCommand(sub)
			require.Error(t, err)
		})
	}
}

func TestGenerate_RejectsArgs(t *testing.T) {
	_, _, err := executeCommand("generate", "extra")
	require.Error(t, err)
}

func TestBrowse_WatchRequiresFile(t *testing.T) {
	_, _, err := executeCommand("browse", "--watch")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "--watch requires a data file")
}

// ---------------------------------------------------------------------------
// filter
// ---------------------------------------------------------------------------

func TestFilter_Table(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p)
	require.NoError(t, err)

	assert.Contains(t, stdout, "firstName")
	assert.Contains(t, stdout, "▸ Alice (Level 0)")
	assert.Contains(t, stdout, "Erin")
	assert.NotContains(t, stdout, "Bob", "collapsed sub-rows are not drawn")
}

func TestFilter_QueryKeepsAncestors(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--query", "jones", "--auto-expand")
	require.NoError(t, err)

	assert.Contains(t, stdout, "▾ Alice (Level 0)")
	assert.Contains(t, stdout, "Bob")
	assert.NotContains(t, stdout, "Erin")
}

func TestFilter_JSON(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--format", "json", "--query", "erin")
	require.NoError(t, err)

	doc := decodeDocument(t, stdout)
	assert.Equal(t, "erin", doc.Query)
	assert.Equal(t, 3, doc.Total)
	assert.Equal(t, 1, doc.Shown)
	assert.Equal(t, []string{"1"}, doc.MatchedIDs)
	assert.Equal(t, []string{"1"}, doc.IDs())
}

func TestFilter_YAMLAll(t *testing.T) {
	p := writeFile(t, "people.yaml", `
- firstName: Alice
  lastName: Smith
  subRows:
    - firstName: Bob
      lastName: Jones
`)

	stdout, _, err := executeCommand("filter", p, "--format", "yaml", "--all")
	require.NoError(t, err)

	assert.Contains(t, stdout, "id: \"0.0\"")
	assert.Contains(t, stdout, "firstName: Bob")
}

func TestFilter_Markdown(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--format", "markdown", "--query", "jones", "--auto-expand")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Rows matching \"jones\"")
	assert.Contains(t, stdout, "| Row | firstName | lastName |")
	assert.Contains(t, stdout, "| &nbsp;&nbsp;`0.0` | **Bob** | **Jones** |")
}

func TestFilter_ShowExpanded(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--expand-all", "--show-expanded")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Bob")
	assert.Contains(t, stdout, `"0": true`)
}

func TestFilter_OutputFile(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)
	out := filepath.Join(t.TempDir(), "table.txt")

	stdout, _, err := executeCommand("filter", p, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Erin")
}

func TestFilter_Columns(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--columns", "lastName", "--query", "alice")
	require.NoError(t, err)

	// firstName is not a column, so nothing matches.
	assert.NotContains(t, stdout, "Smith")
	assert.Contains(t, stdout, "lastName")
}

func TestFilter_ExcludeAndMaxDepth(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--format", "json", "--all", "--exclude", "firstName in (erin, bob)")
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, decodeDocument(t, stdout).IDs())

	stdout, _, err = executeCommand("filter", p, "--expand-all", "--max-depth", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Alice")
	assert.NotContains(t, stdout, "Bob")

	_, _, err = executeCommand("filter", p, "--exclude", "firstName")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid selector")
}

func TestFilter_JQ(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("filter", p, "--format", "json", "--jq", `.lastName == "Jones"`)
	require.NoError(t, err)

	doc := decodeDocument(t, stdout)
	assert.Equal(t, `jq .lastName == "Jones"`, doc.Query)
	assert.Equal(t, []string{"0.0"}, doc.MatchedIDs)
	assert.Equal(t, []string{"0"}, doc.IDs())

	_, _, err = executeCommand("filter", p, "--jq", ".lastName ==")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "--jq")

	_, _, err = executeCommand("filter", p, "--jq", ".x", "--query", "bob")
	requireExitCode(t, err, 2)
}

func TestFilter_Errors(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"unknown format", []string{"filter", p, "--format", "xml"}, 2, "unknown output format"},
		{"negative limit", []string{"filter", p, "--limit", "-1"}, 2, "--limit"},
		{"missing file", []string{"filter", filepath.Join(t.TempDir(), "missing.json")}, 1, "reading data file"},
		{"unsupported extension", []string{"filter", writeFile(t, "people.txt", "x")}, 2, "unsupported data format"},
		{"broken json", []string{"filter", writeFile(t, "broken.json", "{")}, 1, "broken.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(tt.args...)
			requireExitCode(t, err, tt.code)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// ---------------------------------------------------------------------------
// generate
// ---------------------------------------------------------------------------

func TestGenerate_RoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sample.json")

	_, _, err := executeCommand("generate", "--seed", "7", "--lens", "2,1", "-o", out)
	require.NoError(t, err)

	stdout, _, err := executeCommand("filter", out, "--format", "json", "--all")
	require.NoError(t, err)

	doc := decodeDocument(t, stdout)
	assert.Equal(t, 4, doc.Total)
	assert.Equal(t, []string{"0", "0.0", "1", "1.0"}, doc.IDs())
}

func TestGenerate_Deterministic(t *testing.T) {
	first, _, err := executeCommand("generate", "--seed", "3", "--lens", "2")
	require.NoError(t, err)

	second, _, err := executeCommand("generate", "--seed", "3", "--lens", "2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "version: 1.0.0")
	assert.Contains(t, first, "records:")
}

func TestGenerate_Errors(t *testing.T) {
	_, _, err := executeCommand("generate", "--lens", "2,-1")
	requireExitCode(t, err, 2)

	_, _, err = executeCommand("generate", "--format", "xml")
	requireExitCode(t, err, 2)

	_, _, err = executeCommand("generate", "-o", filepath.Join(t.TempDir(), "sample.csv"))
	requireExitCode(t, err, 2)
}

// ---------------------------------------------------------------------------
// diff
// ---------------------------------------------------------------------------

func TestDiff_Queries(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("diff", p, "--to", "erin")
	require.NoError(t, err)

	assert.Contains(t, stdout, "--- query: (none)")
	assert.Contains(t, stdout, `+++ query: "erin"`)
	assert.Contains(t, stdout, "rows: -1 row(s) hidden")
	assert.Contains(t, stdout, "hidden: 0")
}

func TestDiff_ExitCode(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	_, _, err := executeCommand("diff", p, "--from", "smith", "--to", "erin", "--exit-code")
	requireExitCode(t, err, 1)

	stdout, _, err := executeCommand("diff", p, "--from", "a", "--to", "A", "--exit-code")
	require.NoError(t, err, "matching is case-insensitive")
	assert.Contains(t, stdout, "No differences found.")
	assert.Contains(t, stdout, "rows: no visibility changes")
}

func TestDiff_SameQuery(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	_, _, err := executeCommand("diff", p, "--from", "x", "--to", "x")
	requireExitCode(t, err, 2)
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func TestValidate_Passes(t *testing.T) {
	p := writeFile(t, "people.json", peopleJSON)

	stdout, _, err := executeCommand("validate", p)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Validation passed.")
}

func TestValidate_Errors(t *testing.T) {
	p := writeFile(t, "bad.json", `[{"firstName": "Alice", "subRows": "Bob"}]`)

	_, stderr, err := executeCommand("validate", p)
	requireExitCode(t, err, 1)
	assert.Contains(t, stderr, "records[0].subRows: must be a list")
}

func TestValidate_StrictWarnings(t *testing.T) {
	p := writeFile(t, "warn.json", `[{"firstName": "Alice", "skipFilter": "yes"}]`)

	stdout, stderr, err := executeCommand("validate", p)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warnings (1)")
	assert.Contains(t, stdout, "Validation passed.")

	_, _, err = executeCommand("validate", p, "--strict")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "strict mode")
}

// ---------------------------------------------------------------------------
// Completion command
// ---------------------------------------------------------------------------

func TestCompletion_Bash(t *testing.T) {
	stdout, _, err := executeCommand("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bash completion")
}

func TestCompletion_Zsh(t *testing.T) {
	stdout, _, err := executeCommand("completion", "zsh")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestCompletion_Fish(t *testing.T) {
	stdout, _, err := executeCommand("completion", "fish")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fish")
}

func TestCompletion_InvalidShell(t *testing.T) {
	_, _, err := executeCommand("completion", "invalid")
	require.Error(t, err)
}
