// Package watch re-runs the filter pass whenever a watched data file
// changes. It watches the parent directories of the files so that editors
// that replace files atomically are seen, debounces rapid events, and
// reports which rows became visible or hidden.
package watch
