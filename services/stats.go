package services

import (
	"strings"
	"time"

	"message-board/infrastructure/storage"

	"github.com/samber/lo"
)

// Stats summarizes the board the way the front-end dashboard shows it.
type Stats struct {
	TotalMessages  int
	TotalWords     int
	TotalReactions int64
	// MessagesPerHour is indexed by the hour of day of each message timestamp.
	MessagesPerHour [24]int
}

// ComputeStats expects items already normalized by ListMessages.
func ComputeStats(items []storage.Item, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	stats := Stats{TotalMessages: len(items)}

	for _, item := range items {
		if content, ok := item["content"].(string); ok {
			stats.TotalWords += len(strings.Fields(content))
		}

		if reactions, ok := item[storage.AttrReactions].(map[string]any); ok {
			stats.TotalReactions += lo.SumBy(lo.Values(reactions), countOf)
		}

		if ts := sortTimestamp(item); ts > 0 {
			stats.MessagesPerHour[time.UnixMilli(int64(ts)).In(loc).Hour()]++
		}
	}
	return stats
}

// countOf truncates fractional counts; anything else counts as zero.
func countOf(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
