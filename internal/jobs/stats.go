package jobs

import (
	"context"

	"wowscrape-go/internal/parser"
)

// Stats parses each row's TOOLTIP into stat columns. It makes no requests.
type Stats struct{}

func (Stats) Name() string { return "items_parsed" }

func (Stats) Columns(in []string) []string {
	return appendMissing(in, parser.StatColumns()...)
}

func (Stats) Process(_ context.Context, row map[string]string) ([]map[string]string, error) {
	out := copyRow(row)
	for k, v := range parser.ParseStats(row["TOOLTIP"]) {
		out[k] = v
	}
	return []map[string]string{out}, nil
}
