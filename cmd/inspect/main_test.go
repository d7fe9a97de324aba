package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exact", strings.Repeat("a", 60), strings.Repeat("a", 60)},
		{"ascii", strings.Repeat("a", 61), strings.Repeat("a", 57) + "..."},
		{"emoji", strings.Repeat("🔥", 70), strings.Repeat("🔥", 57) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, 60)
			require.Equal(t, tt.want, got)
			require.True(t, utf8.ValidString(got))
		})
	}
}

func TestFormatReactions(t *testing.T) {
	req := require.New(t)
	req.Equal("like:2 🔥:1", formatReactions(map[string]any{"🔥": int64(1), "like": int64(2)}))
	req.Empty(formatReactions(map[string]any{}))
	req.Empty(formatReactions(nil))
}
