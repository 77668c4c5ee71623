package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wowscrape-go/internal/frontier"
	"wowscrape-go/internal/parser"
)

// Icons downloads the large jpg for every ICON_NAME into Dir. Files already
// on disk are left alone.
type Icons struct {
	fetch Fetcher
	Dir   string
	seen  *frontier.Visited
}

func NewIcons(f Fetcher, dir string) *Icons {
	return &Icons{fetch: f, Dir: dir, seen: frontier.NewVisited()}
}

func (j *Icons) Name() string { return "icons" }

func (j *Icons) Columns([]string) []string { return nil }

func (j *Icons) Process(ctx context.Context, row map[string]string) ([]map[string]string, error) {
	name := field(row, "ICON_NAME")
	if name == "" || !j.seen.Add(name) {
		return nil, nil
	}
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("icon name %q is not a plain file name", name)
	}
	path := filepath.Join(j.Dir, name+".jpg")
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err := j.fetch.Download(ctx, parser.IconURL(name), path); err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return nil, nil
}
