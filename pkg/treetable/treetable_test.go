package treetable_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/treetable/pkg/treetable"
)

func people() []map[string]any {
	return []map[string]any{
		{
			"firstName": "Alice", "lastName": "Smith", "status": "single",
			"subRows": []any{
				map[string]any{"firstName": "Bob", "lastName": "Jones", "status": "married"},
			},
		},
		{"firstName": "Erin", "lastName": "Stone", "status": "married"},
	}
}

func TestFilter_EmptyQueryKeepsEverything(t *testing.T) {
	res, err := treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"0", "1"}, res.VisibleIDs())
	assert.Empty(t, res.MatchedIDs)
}

func TestFilter_DescendantMatchKeepsAncestor(t *testing.T) {
	res, err := treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), "jones",
		treetable.WithAutoExpand(),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "0.0"}, res.VisibleIDs())
	assert.Equal(t, []string{"0.0"}, res.MatchedIDs)
	assert.Equal(t, []string{"0"}, res.Expanded)
	assert.Contains(t, res.Table(), "▾ Alice (Level 0)")
}

func TestFilter_NonStringQuery(t *testing.T) {
	res, err := treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), 42)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Len(t, res.Excluded, 2)
}

func TestFilter_JQQuery(t *testing.T) {
	q, err := treetable.CompileJQ(`.status == "married"`)
	require.NoError(t, err)

	res, err := treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), q, treetable.WithExpandAll())
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "0.0", "1"}, res.VisibleIDs())
	assert.ElementsMatch(t, []string{"0.0", "1"}, res.MatchedIDs)

	_, err = treetable.CompileJQ("map(")
	assert.Error(t, err)
}

func TestFilterRows(t *testing.T) {
	rows := []*treetable.Row{
		{ID: "0", Values: map[string]any{"name": "Alice"}, SubRows: []*treetable.Row{
			{ID: "0.0", Values: map[string]any{"name": "Bob"}},
		}},
		{ID: "1", Values: map[string]any{"name": "Erin"}},
	}

	res, err := treetable.FilterRows(context.Background(), rows, []string{"name"}, "bob")
	require.NoError(t, err)

	require.Len(t, res.Included, 1)
	assert.Equal(t, "0", res.Included[0].ID)
	require.Len(t, res.Included[0].SubRows, 1)
	assert.Equal(t, "0.0", res.Included[0].SubRows[0].ID)
	assert.Equal(t, []string{"0.0"}, res.MatchedIDs)
	assert.Same(t, rows[0], rows[0].SubRows[0].Parent, "the input forest is linked")
}

func TestFilterRows_InvalidIDs(t *testing.T) {
	tests := []struct {
		name string
		rows []*treetable.Row
		want string
	}{
		{
			name: "duplicate",
			rows: []*treetable.Row{{ID: "0"}, {ID: "0"}},
			want: "duplicate row ids: 0",
		},
		{
			name: "child not prefixed",
			rows: []*treetable.Row{{ID: "0", SubRows: []*treetable.Row{{ID: "1.0"}}}},
			want: `row "1.0" is not prefixed by its parent id "0"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := treetable.FilterRows(context.Background(), tt.rows, []string{"name"}, "x")
			require.ErrorIs(t, err, treetable.ErrInvalidRows)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestFilter_InferredColumns(t *testing.T) {
	res, err := treetable.Filter(context.Background(), people(), nil, "married")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"0.0", "1"}, res.MatchedIDs)
	assert.Equal(t, treetable.ColumnsFor("firstName", "lastName", "status"), res.Columns)
}

func TestFilter_Options(t *testing.T) {
	res, err := treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), "",
		treetable.WithExpandAll(),
		treetable.WithExclude("firstName=erin"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0.0"}, res.VisibleIDs())

	res, err = treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), "",
		treetable.WithExpanded("0"),
		treetable.WithMaxDepth(0),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, res.VisibleIDs())

	_, err = treetable.Filter(context.Background(), people(), nil, "", treetable.WithExclude("nope"))
	assert.ErrorContains(t, err, "invalid selector")
}

func TestFilter_InvalidColumns(t *testing.T) {
	_, err := treetable.Filter(context.Background(), people(), []treetable.Column{{Header: "x"}}, "")
	require.ErrorIs(t, err, treetable.ErrInvalidColumns)
}

func TestFilter_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := treetable.Filter(ctx, people(), treetable.DefaultColumns(), "alice")
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_JSON(t *testing.T) {
	res, err := treetable.Filter(context.Background(), people(), treetable.DefaultColumns(), "alice")
	require.NoError(t, err)

	data, err := res.JSON(true)
	require.NoError(t, err)

	var doc struct {
		Query      string   `json:"query"`
		Shown      int      `json:"shown"`
		MatchedIDs []string `json:"matchedIds"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "alice", doc.Query)
	assert.Equal(t, 1, doc.Shown)
	assert.Equal(t, []string{"0"}, doc.MatchedIDs)

	y, err := res.YAML(false)
	require.NoError(t, err)
	assert.Contains(t, string(y), "query: alice")
}

func TestFilterFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "people.json")
	data, err := json.Marshal(people())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0o600))

	res, err := treetable.FilterFile(context.Background(), p, nil, "stone")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res.VisibleIDs())

	_, err = treetable.FilterFile(context.Background(), "", nil, "")
	assert.ErrorContains(t, err, "must not be empty")

	_, err = treetable.FilterFile(context.Background(), filepath.Join(t.TempDir(), "x.csv"), nil, "")
	assert.Error(t, err)
}
