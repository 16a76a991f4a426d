// Package tui is the interactive table browser: a filter input above the
// table, a row cursor and keys to expand and collapse rows.
package tui
