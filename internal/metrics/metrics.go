package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wowscrape_pages_fetched_total",
		Help: "Total number of pages successfully fetched",
	})
	BytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wowscrape_bytes_fetched_total",
		Help: "Total bytes downloaded",
	})
	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wowscrape_fetch_errors_total",
		Help: "Fetches that failed after retries",
	})
	Literals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wowscrape_literals_total",
		Help: "Embedded literal extraction outcomes (ok, not_found, conversion_error)",
	}, []string{"outcome"})
	RowsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wowscrape_rows_written_total",
		Help: "Output rows written, by job",
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(PagesFetched, BytesFetched, FetchErrors, Literals, RowsWritten)
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
