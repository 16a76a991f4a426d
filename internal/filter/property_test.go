package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hupe1980/treetable/internal/row"
)

var propertyNames = []string{"alice", "bob", "carol", "dave", "bobby", "Al"}

// forestGen draws a small random forest with hierarchical ids.
func forestGen(t *rapid.T) []*row.Row {
	var build func(parentID string, depth int) []*row.Row
	build = func(parentID string, depth int) []*row.Row {
		n := rapid.IntRange(0, 3).Draw(t, "width")
		if parentID == "" && n == 0 {
			n = 1
		}

		rows := make([]*row.Row, 0, n)

		for i := 0; i < n; i++ {
			id := row.ChildID(parentID, i)
			r := named(id, rapid.SampledFrom(propertyNames).Draw(t, "name"))

			if rapid.IntRange(0, 9).Draw(t, "skip") == 0 {
				skipped(r)
			}

			if depth < 3 {
				r.SubRows = build(id, depth+1)
			}

			rows = append(rows, r)
		}

		return rows
	}

	return row.Link(build("", 0))
}

func TestProperty_EmptyQueryIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := forestGen(t)

		res, err := Pass(context.Background(), rows, nameColumn, "")
		require.NoError(t, err)
		require.Equal(t, row.IDs(rows), row.IDs(res.Included))
	})
}

func TestProperty_NonStringIsEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := forestGen(t)
		v := rapid.IntRange(-100, 100).Draw(t, "value")

		res, err := Pass(context.Background(), rows, nameColumn, v)
		require.NoError(t, err)
		require.Empty(t, res.Included)
	})
}

func TestProperty_MatchesKeepLineageAndSubtree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := forestGen(t)
		query := rapid.SampledFrom([]string{"bob", "al", "D", "o b", "zzz"}).Draw(t, "query")
		tokens := Tokenize(query)

		res, err := Pass(context.Background(), rows, nameColumn, query)
		require.NoError(t, err)

		kept := make(map[string]bool)
		for _, id := range row.IDs(res.Included) {
			kept[id] = true
		}

		row.Walk(rows, func(r *row.Row) bool {
			if !Matches(r, nameColumn, tokens) {
				return true
			}

			for _, a := range row.Ancestors(r) {
				require.True(t, kept[a.ID], "ancestor %s of match %s", a.ID, r.ID)
			}

			for _, id := range row.IDs([]*row.Row{r}) {
				require.True(t, kept[id], "row %s under match %s", id, r.ID)
			}

			return true
		})
	})
}

func TestProperty_RootSkipFilterAlwaysKept(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := forestGen(t)

		res, err := Pass(context.Background(), rows, nameColumn, "zzz")
		require.NoError(t, err)

		var want []string
		for _, r := range rows {
			if r.SkipFilter() {
				want = append(want, r.ID)
			}
		}

		var got []string
		for _, r := range res.Included {
			if r.SkipFilter() {
				got = append(got, r.ID)
			}
		}

		require.Equal(t, want, got)
	})
}

func TestProperty_PassIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := forestGen(t)
		query := rapid.SampledFrom([]string{"bob", "al", "carol dave", "y"}).Draw(t, "query")

		first, err := Pass(context.Background(), rows, nameColumn, query)
		require.NoError(t, err)

		second, err := Pass(context.Background(), first.Included, nameColumn, query)
		require.NoError(t, err)

		require.Equal(t, row.IDs(first.Included), row.IDs(second.Included))
	})
}
