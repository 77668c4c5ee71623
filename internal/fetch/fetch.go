// Package fetch downloads pages politely: per-host rate limits, robots.txt,
// a response size cap and a small retry budget for transient failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"wowscrape-go/internal/hostman"
	"wowscrape-go/internal/metrics"
)

var (
	// ErrDisallowed means robots.txt forbids the URL.
	ErrDisallowed = errors.New("fetch: disallowed by robots.txt")
	// ErrNotFound is a 404 response. It is never retried.
	ErrNotFound = errors.New("fetch: not found")
	// ErrTooLarge means the body exceeded Options.MaxBytes.
	ErrTooLarge = errors.New("fetch: response body too large")
)

// StatusError is a non-2xx response other than 404.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Code) }

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options configures a Fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
	Retries   int
	Backoff   time.Duration
}

// Fetcher is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	hosts  *hostman.Manager
	opts   Options
	log    zerolog.Logger
}

// New builds a Fetcher. client may be nil.
func New(client *http.Client, hosts *hostman.Manager, opts Options, log zerolog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 8 << 20
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Fetcher{
		client: client,
		hosts:  hosts,
		opts:   opts,
		log:    log.With().Str("component", "fetch").Logger(),
	}
}

// Get returns the body of rawURL. Bodies over MaxBytes fail with ErrTooLarge.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := f.do(ctx, rawURL, func(r io.Reader) error {
		b, err := io.ReadAll(f.limit(r))
		if err != nil {
			return err
		}
		if int64(len(b)) > f.opts.MaxBytes {
			return fmt.Errorf("%w: %s over %d bytes", ErrTooLarge, rawURL, f.opts.MaxBytes)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.BytesFetched.Add(float64(len(body)))
	metrics.PagesFetched.Inc()
	return body, nil
}

// Download streams rawURL into path. A partial file is removed on failure.
func (f *Fetcher) Download(ctx context.Context, rawURL, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return f.do(ctx, rawURL, func(r io.Reader) error {
		tmp := path + ".part"
		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		n, err := io.Copy(out, f.limit(r))
		if err == nil && n > f.opts.MaxBytes {
			err = fmt.Errorf("%w: %s over %d bytes", ErrTooLarge, rawURL, f.opts.MaxBytes)
		}
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(tmp)
			return err
		}
		metrics.BytesFetched.Add(float64(n))
		return os.Rename(tmp, path)
	})
}

// Exists reports whether rawURL answers 2xx to a GET. Network failures count
// as missing.
func (f *Fetcher) Exists(ctx context.Context, rawURL string) bool {
	err := f.do(ctx, rawURL, func(r io.Reader) error {
		_, err := io.Copy(io.Discard, io.LimitReader(r, f.opts.MaxBytes))
		return err
	})
	return err == nil
}

// limit lets one byte past MaxBytes through so callers can detect overflow.
func (f *Fetcher) limit(r io.Reader) io.Reader {
	return io.LimitReader(r, f.opts.MaxBytes+1)
}

func (f *Fetcher) do(ctx context.Context, rawURL string, consume func(io.Reader) error) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if f.hosts != nil {
		allowed, wait := f.hosts.Check(ctx, u)
		if !allowed {
			return ErrDisallowed
		}
		if err := wait(ctx); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt <= f.opts.Retries; attempt++ {
		if attempt > 0 {
			delay := f.opts.Backoff * time.Duration(1<<(attempt-1))
			f.log.Debug().Str("url", rawURL).Int("attempt", attempt).Dur("delay", delay).Err(lastErr).Msg("retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		lastErr = f.once(ctx, rawURL, consume)
		if lastErr == nil || !retryable(lastErr) {
			break
		}
	}
	if lastErr != nil {
		metrics.FetchErrors.Inc()
	}
	return lastErr
}

func (f *Fetcher) once(ctx context.Context, rawURL string, consume func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	return consume(resp.Body)
}

func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDisallowed) || errors.Is(err, ErrTooLarge) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return true
}
