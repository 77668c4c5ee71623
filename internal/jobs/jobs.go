// Package jobs holds the row-level work for each CLI command. Every job is
// a crawler.Job.
package jobs

import (
	"context"
	"errors"
	"strings"

	"wowscrape-go/internal/jsliteral"
	"wowscrape-go/internal/metrics"
)

// Fetcher is the subset of fetch.Fetcher the jobs use.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url, path string) error
	Exists(ctx context.Context, url string) bool
}

// observeLiteral counts an extraction outcome.
func observeLiteral(err error) {
	switch {
	case err == nil:
		metrics.Literals.WithLabelValues("ok").Inc()
	case errors.Is(err, jsliteral.ErrConversion):
		metrics.Literals.WithLabelValues("conversion_error").Inc()
	default:
		metrics.Literals.WithLabelValues("not_found").Inc()
	}
}

func field(row map[string]string, key string) string {
	return strings.TrimSpace(row[key])
}

func copyRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row)+3)
	for k, v := range row {
		out[k] = v
	}
	return out
}

func appendMissing(cols []string, extra ...string) []string {
	out := append([]string(nil), cols...)
	for _, e := range extra {
		found := false
		for _, c := range out {
			if c == e {
				found = true
				break
			}
		}
		if !found {
			out = append(out, e)
		}
	}
	return out
}
