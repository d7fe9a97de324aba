package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"message-board/infrastructure/storage"
	"message-board/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"INSPECT_BADGER_FILEPATH" default:"./data/board"`
	// INSPECT_COLOURS enables colorized headers
	Colours  bool   `envconfig:"INSPECT_COLOURS" default:"true"`
	Timezone string `envconfig:"INSPECT_TIMEZONE" default:"UTC"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	timezone := flag.String("tz", config.Timezone, "Time zone used for the hourly histogram")
	limit := flag.Int("limit", 0, "Show only the N most recent messages (0 = all)")
	flag.Parse()

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		log.Fatalf("Unknown time zone %q: %v", *timezone, err)
	}

	// Read-only with BypassLockGuard so the inspector can run next to a live board.
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	store := storage.NewBadgerStore(db, logger, 0)
	defer store.Close()

	// The atomic strategy is never exercised here: the inspector only lists.
	board := services.NewBoardService(store, logger, services.StrategyAtomic)
	messages, err := board.ListMessages(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	printHeader(config.Colours, fmt.Sprintf("%d messages in %s", len(messages), *dbPath))
	shown := messages
	if *limit > 0 && len(shown) > *limit {
		shown = shown[:*limit]
	}
	renderMessages(shown, loc)

	printHeader(config.Colours, "Statistics")
	renderStats(services.ComputeStats(messages, loc))
}

func printHeader(colours bool, title string) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderMessages(messages []storage.Item, loc *time.Location) {
	table := newTable()
	table.SetHeader([]string{"Message ID", "Time", "Avatar", "Content", "Reactions"})

	for _, m := range messages {
		// First 8 characters of the id are enough to tell messages apart
		id, _ := m[storage.AttrMessageID].(string)
		if len(id) > 8 {
			id = id[:8]
		}

		at := "-"
		if ts, ok := m[storage.AttrTimestamp].(int64); ok {
			at = time.UnixMilli(ts).In(loc).Format("2006-01-02 15:04:05")
		}

		avatar, _ := m["avatar"].(string)
		content, _ := m["content"].(string)
		table.Append([]string{id, at, avatar, truncate(content, 60), formatReactions(m[storage.AttrReactions])})
	}
	table.Render()
}

// truncate keeps at most limit characters, ending with "..." when it cuts.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func formatReactions(v any) string {
	reactions, ok := v.(map[string]any)
	if !ok || len(reactions) == 0 {
		return ""
	}
	names := make([]string, 0, len(reactions))
	for name := range reactions {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%v", name, reactions[name]))
	}
	return strings.Join(parts, " ")
}

func renderStats(stats services.Stats) {
	table := newTable()
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Messages", fmt.Sprint(stats.TotalMessages)})
	table.Append([]string{"Words", fmt.Sprint(stats.TotalWords)})
	table.Append([]string{"Reactions", fmt.Sprint(stats.TotalReactions)})
	table.Render()

	peak := 0
	for _, n := range stats.MessagesPerHour {
		peak = max(peak, n)
	}
	histogram := newTable()
	histogram.SetHeader([]string{"Hour", "Messages", ""})
	for hour, n := range stats.MessagesPerHour {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", n*40/peak)
		}
		histogram.Append([]string{fmt.Sprintf("%02d:00", hour), fmt.Sprint(n), bar})
	}
	histogram.Render()
}
