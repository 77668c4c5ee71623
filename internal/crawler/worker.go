package crawler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"wowscrape-go/internal/jsliteral"
)

// task is one input row and its position in the input table.
type task struct {
	idx int
	row map[string]string
}

type result struct {
	idx  int
	rows []map[string]string
	err  error
}

// -----------------------------------------------------------------------------
// runWorker handles the whole life-cycle for one goroutine.
// -----------------------------------------------------------------------------
func runWorker(
	ctx context.Context,
	job Job,
	jobs <-chan task,
	results chan<- result,
) {
	for {
		select {
		case <-ctx.Done():
			return

		case t, ok := <-jobs:
			if !ok { // channel closed
				return
			}
			rows, err := job.Process(ctx, t.row)
			select {
			case results <- result{idx: t.idx, rows: rows, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// logRowError logs a skipped or partial row. Literal conversion failures
// carry the offset and snippet so the dialect gap can be inspected.
func logRowError(log zerolog.Logger, idx int, err error) {
	ev := log.Warn().Int("row", idx+1).Err(err)
	var ce *jsliteral.ConversionError
	switch {
	case errors.As(err, &ce):
		ev = ev.Int64("offset", ce.Offset).Str("snippet", ce.Snippet)
	case errors.Is(err, jsliteral.ErrNotFound):
		ev = ev.Str("reason", "no data found")
	}
	ev.Msg("row skipped")
}
