// internal/crawler/engine.go
package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wowscrape-go/internal/frontier"
	"wowscrape-go/internal/metrics"
	"wowscrape-go/internal/storage"
)

// Job turns input rows into output rows. Implementations must be safe for
// concurrent use; Process is called from several workers.
type Job interface {
	Name() string
	// Columns is the output header for the given input header. A nil result
	// means the job writes no table.
	Columns(input []string) []string
	// Process handles one input row. Rows returned alongside an error are
	// still written; the error is logged and the row counted as failed.
	Process(ctx context.Context, row map[string]string) ([]map[string]string, error)
}

// Stats summarises a Run.
type Stats struct {
	Rows    int
	Failed  int
	Written int
}

// -----------------------------------------------------------------------------
// Public entry-point
// -----------------------------------------------------------------------------

// Run feeds every row of in through job and writes the output table, in
// input order, to sink. A nil sink discards output.
func Run(ctx context.Context, job Job, in storage.Table, sink storage.Sink, opts Options, log zerolog.Logger) (Stats, error) {
	opts.prepare()
	log = log.With().Str("job", job.Name()).Logger()

	// ----- Frontier ----------------------------------------------------------
	queue := frontier.NewQueue[task]()
	for i, row := range in.Rows {
		queue.Enqueue(task{idx: i, row: row})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ----- Worker pool channels ---------------------------------------------
	jobs := make(chan task, opts.Workers*2)
	results := make(chan result, opts.Workers*2)
	wg := sync.WaitGroup{}

	// ----- Dispatcher --------------------------------------------------------
	go func() {
		defer close(jobs)
		for {
			t, ok := queue.PopFront()
			if !ok {
				return
			}
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	// ----- Workers -----------------------------------------------------------
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(ctx, job, jobs, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// ----- Stats ticker ------------------------------------------------------
	var tick <-chan time.Time
	if opts.ProgressEvery > 0 {
		ticker := time.NewTicker(opts.ProgressEvery)
		defer ticker.Stop()
		tick = ticker.C
	}

	stats := Stats{Rows: len(in.Rows)}
	byIdx := make([][]map[string]string, len(in.Rows))
	done := 0
	start := time.Now()

collect:
	for {
		select {
		case r, ok := <-results:
			if !ok {
				break collect
			}
			done++
			byIdx[r.idx] = r.rows
			if r.err != nil {
				stats.Failed++
				logRowError(log, r.idx, r.err)
			}
		case <-tick:
			log.Info().
				Dur("elapsed", time.Since(start).Round(time.Second)).
				Int("done", done).
				Int("queued", queue.Size()).
				Int("total", queue.TotalQueued()).
				Msg("progress")
		}
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	cols := job.Columns(in.Columns)
	if cols == nil || sink == nil {
		log.Info().Int("rows", stats.Rows).Int("failed", stats.Failed).Msg("done")
		return stats, nil
	}

	out := storage.Table{Name: job.Name(), Columns: cols}
	for _, rows := range byIdx {
		out.Rows = append(out.Rows, rows...)
	}
	if err := sink.WriteTable(ctx, out); err != nil {
		return stats, fmt.Errorf("write %s: %w", job.Name(), err)
	}
	stats.Written = len(out.Rows)
	metrics.RowsWritten.WithLabelValues(job.Name()).Add(float64(stats.Written))

	log.Info().
		Int("rows", stats.Rows).
		Int("failed", stats.Failed).
		Int("written", stats.Written).
		Msg("done")
	return stats, nil
}
