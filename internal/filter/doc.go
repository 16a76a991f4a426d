// Package filter implements the global text filter for hierarchical table
// rows. A free-text query is split into tokens; a row matches when every
// token is a substring of its match corpus (the lower-cased, whitespace
// normalised values of the considered columns).
//
// [GlobalFilter] filters one level of a forest. A row survives when it
// matches directly, carries skipFilter on its original record, descends from
// a row already recorded as matched, or has at least one sub-row that
// survives the same filter. [Pass] applies a level filter to every level of
// a forest with one shared [MatchRecorder], which is what makes descendants
// of a matched row visible, and returns a new forest without touching the
// input.
//
// Known limitation: the recursive retention test that looks into a row's
// sub-rows runs with its own empty recorder. Matches it finds are not
// recorded and it never applies descendant propagation, so a row is kept
// "because a descendant matched" without being broadcast as a matched
// ancestor. Only the level-by-level traversal of [Pass] shares matches
// across depths.
//
// The package is built around the [Filter] interface and [Chain] type, which
// allow composable, ordered filter application.
package filter
