package filter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hupe1980/treetable/internal/row"
)

// lowerCase lower-cases s with the root locale. A Caser keeps state, so a
// fresh one is used per call.
func lowerCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Tokenize trims and lower-cases query and splits it on whitespace. Empty
// tokens are dropped and duplicates keep their first position.
func Tokenize(query string) []string {
	fields := strings.Fields(lowerCase(strings.TrimSpace(query)))
	tokens := fields[:0]
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}

		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}

	return tokens
}

// Corpus builds the match corpus of r: the scalar values of the given
// columns, joined by single spaces and lower-cased. Composite values and
// columns outside columnIDs never take part.
func Corpus(r *row.Row, columnIDs []string) string {
	parts := make([]string, 0, len(columnIDs))

	for _, id := range columnIDs {
		v, ok := r.Value(id)
		if !ok {
			continue
		}

		if s, ok := scalarText(v); ok {
			parts = append(parts, s)
		}
	}

	return lowerCase(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

// Matches reports whether every token is a substring of the corpus of r.
// No tokens match everything.
func Matches(r *row.Row, columnIDs []string, tokens []string) bool {
	return containsAll(Corpus(r, columnIDs), tokens)
}

func containsAll(corpus string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(corpus, tok) {
			return false
		}
	}

	return true
}

// scalarText renders strings and numbers. Everything else, booleans
// included, is not searchable.
func scalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return strconv.FormatInt(int64(val), 10), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return formatNumber(float64(val)), true
	case float64:
		return formatNumber(val), true
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return formatNumber(f), true
		}

		return val.String(), true
	default:
		return "", false
	}
}

// formatNumber prints f the way JavaScript's String(n) does: shortest
// round-trip digits, exponent notation outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")

		return mantissa + "e" + sign + digits
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
