package hostman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newRobotsServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(hits, 1)
			w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckRespectsRobots(t *testing.T) {
	var hits int32
	srv := newRobotsServer(t, &hits)
	m := New(Options{UserAgent: "wowscrape-test", RPS: 100, RobotsTimeout: time.Second}, zerolog.Nop())

	ok, _ := m.Check(context.Background(), mustParse(t, srv.URL+"/classic/npc=1"))
	if !ok {
		t.Fatal("Check(/classic) = false, want true")
	}
	ok, _ = m.Check(context.Background(), mustParse(t, srv.URL+"/private/x"))
	if ok {
		t.Fatal("Check(/private) = true, want false")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("robots.txt fetched %d times, want 1", n)
	}
}

func TestCheckIgnoreRobots(t *testing.T) {
	var hits int32
	srv := newRobotsServer(t, &hits)
	m := New(Options{UserAgent: "wowscrape-test", IgnoreRobots: true}, zerolog.Nop())

	ok, wait := m.Check(context.Background(), mustParse(t, srv.URL+"/private/x"))
	if !ok {
		t.Fatal("Check() = false with IgnoreRobots")
	}
	if err := wait(context.Background()); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if hits != 0 {
		t.Fatalf("robots.txt fetched %d times, want 0", hits)
	}
}

func TestUnreachableRobotsAllows(t *testing.T) {
	m := New(Options{UserAgent: "wowscrape-test", RobotsTimeout: 50 * time.Millisecond}, zerolog.Nop())
	ok, _ := m.Check(context.Background(), mustParse(t, "http://127.0.0.1:1/x"))
	if !ok {
		t.Fatal("Check() = false when robots.txt is unreachable")
	}
}

func TestLimiterBurstAtLeastOne(t *testing.T) {
	m := New(Options{RPS: 0.5}, zerolog.Nop())
	if b := m.newLimiter().Burst(); b != 1 {
		t.Fatalf("Burst() = %d, want 1", b)
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}
