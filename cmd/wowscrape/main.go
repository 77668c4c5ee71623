package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"wowscrape-go/internal/config"
	"wowscrape-go/internal/crawler"
	"wowscrape-go/internal/fetch"
	"wowscrape-go/internal/hostman"
	"wowscrape-go/internal/jobs"
	"wowscrape-go/internal/logging"
	"wowscrape-go/internal/metrics"
	"wowscrape-go/internal/storage"
)

const usage = `usage: wowscrape <command> [flags]

commands:
  drops     filtered equippable drops for every NPC row with loot=1
  tooltips  fill TOOLTIP (and optionally ICON_NAME, DISP_ID) per item or spell
  stats     parse TOOLTIP into stat columns, no network
  icons     download icon jpgs for every ICON_NAME
  assets    report display ids whose model viewer files are missing

run "wowscrape <command> -h" for flags`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "wowscrape:", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	in := fs.String("in", "", "input CSV")
	out := fs.String("out", "", "output: .csv, .xlsx, .db/.sqlite or a mongodb:// URI")
	cfgPath := fs.String("config", "", "YAML config file")
	workers := fs.Int("workers", 0, "parallel workers (overrides config)")
	rps := fs.Float64("rps", 0, "max requests/sec per host (overrides config)")
	timeout := fs.Duration("timeout", 0, "HTTP timeout (overrides config)")
	ua := fs.String("user-agent", "", "HTTP User-Agent (overrides config)")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	pretty := fs.Bool("pretty", false, "human readable console logs")

	// command specific
	kind := fs.String("kind", "item", "tooltips: item or spell")
	idCol := fs.String("id-col", "", "tooltips: id column (default DB_ID for items, SPELLID for spells)")
	withIcon := fs.Bool("icon", false, "tooltips: also fill ICON_NAME")
	withDisp := fs.Bool("displayid", false, "tooltips: also fill DISP_ID")
	iconDir := fs.String("dir", "", "icons: target directory (overrides config)")
	viewer := fs.String("viewer", "", "assets: model viewer base URL (overrides config)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *rps > 0 {
		cfg.RPS = *rps
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *ua != "" {
		cfg.UserAgent = *ua
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *pretty {
		cfg.PrettyLog = true
	}
	if *iconDir != "" {
		cfg.IconDir = *iconDir
	}
	if *viewer != "" {
		cfg.ModelViewer = *viewer
	}
	log := logging.New(cfg.LogLevel, cfg.PrettyLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	hosts := hostman.New(hostman.Options{
		UserAgent:     cfg.UserAgent,
		RPS:           cfg.RPS,
		RobotsTimeout: cfg.RobotsTimeout,
		IgnoreRobots:  cfg.IgnoreRobots,
	}, log)
	fetcher := fetch.New(nil, hosts, fetch.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
	}, log)

	var job crawler.Job
	defaultIn := "items.csv"
	switch cmd {
	case "drops":
		job = jobs.NewDrops(fetcher, cfg.Drops)
		defaultIn = "npcs.csv"
	case "tooltips":
		col := *idCol
		if col == "" {
			col = "DB_ID"
			if *kind == "spell" {
				col = "SPELLID"
			}
		}
		t := jobs.NewTooltips(fetcher, *kind, col)
		t.Icon, t.DisplayID = *withIcon, *withDisp
		job = t
	case "stats":
		job = jobs.Stats{}
	case "icons":
		if err := os.MkdirAll(cfg.IconDir, 0o755); err != nil {
			return err
		}
		job = jobs.NewIcons(fetcher, cfg.IconDir)
	case "assets":
		job = jobs.NewAssets(fetcher, cfg.ModelViewer)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}

	if *in == "" {
		*in = defaultIn
	}
	if *out == "" {
		*out = job.Name() + ".csv"
	}
	return execute(ctx, job, *in, *out, cfg, log)
}

func execute(ctx context.Context, job crawler.Job, in, out string, cfg config.Config, log zerolog.Logger) (err error) {
	table, err := storage.ReadCSV(in)
	if err != nil {
		return err
	}

	var sink storage.Sink
	if job.Columns(table.Columns) != nil {
		sink, err = storage.Open(ctx, out)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, sink.Close())
		}()
	}

	start := time.Now()
	if _, err := crawler.Run(ctx, job, table, sink, crawler.Options{
		Workers:       cfg.Workers,
		ProgressEvery: 10 * time.Second,
	}, log); err != nil {
		return err
	}
	log.Debug().Str("out", out).Dur("took", time.Since(start)).Msg("finished")
	return nil
}
