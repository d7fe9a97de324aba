package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Normalize_Numbers(t *testing.T) {
	tests := []struct {
		name string
		in   json.Number
		want any
	}{
		{"whole", "5", int64(5)},
		{"negative", "-12", int64(-12)},
		{"whole with exponent", "1.7e12", int64(1700000000000)},
		{"whole with trailing zeros", "3.000", int64(3)},
		{"fraction", "12.5", 12.5},
		{"beyond int64 stays exact", "123456789012345678901234567890", json.Number("123456789012345678901234567890")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func Test_Normalize_Is_Recursive(t *testing.T) {
	req := require.New(t)
	item := Item{
		"content":   "hi",
		"timestamp": json.Number("1700000000000"),
		"reactions": map[string]any{"like": json.Number("2"), "wow": json.Number("0.5")},
		"tags":      []any{json.Number("1"), "x", map[string]any{"n": json.Number("7")}},
		"deleted":   nil,
		"pinned":    true,
	}

	got := NormalizeItems([]Item{item})

	req.Len(got, 1)
	req.Equal(Item{
		"content":   "hi",
		"timestamp": int64(1700000000000),
		"reactions": map[string]any{"like": int64(2), "wow": 0.5},
		"tags":      []any{int64(1), "x", map[string]any{"n": int64(7)}},
		"deleted":   nil,
		"pinned":    true,
	}, got[0])
	// The source item is not modified.
	req.Equal(json.Number("1700000000000"), item["timestamp"])
}

func Test_Normalized_Item_Serializes_As_Plain_Numbers(t *testing.T) {
	req := require.New(t)
	item, err := DecodeItem([]byte(`{"timestamp":1.7e12,"reactions":{"like":3}}`))
	req.NoError(err)

	data, err := json.Marshal(Normalize(item))
	req.NoError(err)
	req.JSONEq(`{"timestamp":1700000000000,"reactions":{"like":3}}`, string(data))
}
