package hostman

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// HostInfo stores crawl policy & limiter for one host.
type HostInfo struct {
	robots  *robotstxt.RobotsData // nil if fetch failed or robots are ignored
	limiter *rate.Limiter         // per-host token bucket
}

// Manager holds HostInfo for every host a job touches.
type Manager struct {
	mu           sync.Mutex
	hosts        map[string]*HostInfo
	client       *http.Client
	userAgent    string
	rps          float64       // requests per second, <= 0 means unlimited
	timeout      time.Duration // robots.txt download timeout
	ignoreRobots bool
	log          zerolog.Logger
}

// Options configures a Manager.
type Options struct {
	UserAgent     string
	RPS           float64
	RobotsTimeout time.Duration
	IgnoreRobots  bool
	Client        *http.Client
}

// New returns a ready Manager.
func New(opts Options, log zerolog.Logger) *Manager {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	if opts.RobotsTimeout <= 0 {
		opts.RobotsTimeout = 5 * time.Second
	}
	return &Manager{
		hosts:        make(map[string]*HostInfo),
		client:       client,
		userAgent:    opts.UserAgent,
		rps:          opts.RPS,
		timeout:      opts.RobotsTimeout,
		ignoreRobots: opts.IgnoreRobots,
		log:          log.With().Str("component", "hostman").Logger(),
	}
}

// Check returns (allowed, waitFn). waitFn blocks on the host's token bucket.
func (m *Manager) Check(ctx context.Context, u *url.URL) (bool, func(ctx context.Context) error) {
	h := m.host(ctx, u)

	allowed := true
	if h.robots != nil {
		allowed = h.robots.TestAgent(u.Path, m.userAgent)
	}
	return allowed, h.limiter.Wait
}

// host lazily creates HostInfo; robots.txt is fetched once per host.
// The lock is held during that fetch so concurrent workers don't race it.
func (m *Manager) host(ctx context.Context, u *url.URL) *HostInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.hosts[u.Host]; ok {
		return h
	}
	h := &HostInfo{limiter: m.newLimiter()}
	if !m.ignoreRobots {
		h.robots = m.fetchRobots(ctx, u.Scheme, u.Host)
	}
	m.hosts[u.Host] = h
	return h
}

func (m *Manager) newLimiter() *rate.Limiter {
	if m.rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(m.rps), max(1, int(m.rps))) // burst = rps
}

// --- helpers -------------------------------------------------------------

func (m *Manager) fetchRobots(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	robotsURL := scheme + "://" + host + "/robots.txt"

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Debug().Err(err).Str("host", host).Msg("robots.txt unavailable")
		return nil // treat as no robots file
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		m.log.Debug().Err(err).Str("host", host).Msg("robots.txt unparsable")
		return nil
	}
	return robots
}
