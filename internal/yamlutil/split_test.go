package yamlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"single doc", "firstName: tanner\nage: 23\n", 1},
		{"two docs", "firstName: tanner\n---\nfirstName: kevin\n", 2},
		{"leading separator", "---\nfirstName: tanner\n", 1},
		{"trailing separator", "firstName: tanner\n---\n", 1},
		{"separator with trailing spaces", "a: 1\n---   \nb: 2\n", 2},
		{"empty doc between separators", "a: 1\n---\n\n---\nb: 2\n", 2},
		{"comment-only doc", "a: 1\n---\n# nothing here\n---\nb: 2\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SplitDocuments([]byte(tt.data)), tt.want)
		})
	}
}

func TestDecodeStream(t *testing.T) {
	docs, err := DecodeStream([]byte("firstName: tanner\nage: 23\nsubRows:\n  - firstName: kevin\n---\nversion: 1.0.0\n"))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first := docs[0].(map[string]any)
	assert.Equal(t, int64(23), first["age"])
	assert.Equal(t, "kevin", first["subRows"].([]any)[0].(map[string]any)["firstName"])
	assert.Equal(t, map[string]any{"version": "1.0.0"}, docs[1])
}

func TestDecodeStream_Invalid(t *testing.T) {
	_, err := DecodeStream([]byte("a: 1\n---\na: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 2")
}

func TestNormalize(t *testing.T) {
	got := Normalize(map[any]any{1: []any{2, "x", 1.5}})
	assert.Equal(t, map[string]any{"1": []any{int64(2), "x", 1.5}}, got)
}
