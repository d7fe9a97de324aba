package storage

import (
	"encoding/json"
	"math/big"
	"strconv"
)

// Normalize converts the store's decimals into native numbers, recursively through maps and slices.
// A whole decimal becomes an int64, anything else a float64.
// A whole decimal outside the int64 range stays an exact json.Number integer.
func Normalize(v any) any {
	switch value := v.(type) {
	case Item:
		return map[string]any(normalizeMap(value))
	case map[string]any:
		return normalizeMap(value)
	case []any:
		out := make([]any, len(value))
		for i, elem := range value {
			out[i] = Normalize(elem)
		}
		return out
	case json.Number:
		return normalizeNumber(value)
	default:
		return v
	}
}

// NormalizeItems is the reader's serialization boundary.
func NormalizeItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = normalizeMap(item)
	}
	return out
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

func normalizeNumber(n json.Number) any {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i
	}
	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return n
	}
	if r.IsInt() {
		if r.Num().IsInt64() {
			return r.Num().Int64()
		}
		return json.Number(r.Num().String())
	}
	f, _ := r.Float64()
	return f
}
