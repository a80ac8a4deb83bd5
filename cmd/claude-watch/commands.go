package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	bolt "go.etcd.io/bbolt"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/config"
	"github.com/efuller/claude-watch/pkg/discovery"
	"github.com/efuller/claude-watch/pkg/display"
	"github.com/efuller/claude-watch/pkg/limits"
	"github.com/efuller/claude-watch/pkg/logger"
	"github.com/efuller/claude-watch/pkg/monitor"
	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/plans"
	"github.com/efuller/claude-watch/pkg/pricing"
	"github.com/efuller/claude-watch/pkg/reader"
	"github.com/efuller/claude-watch/pkg/watcher"
)

const (
	periodDaily   = aggregator.PeriodDaily
	periodMonthly = aggregator.PeriodMonthly
)

// cliOverrides carries flag values that take precedence over the
// configuration file.
type cliOverrides struct {
	plan     string
	timezone string
	format   string
}

// app bundles the wired components shared by all commands.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	disc    discovery.Discoverer
	builder *blocks.Builder
	fmt     display.Formatter
}

// newApp loads configuration and wires the common components.
func newApp(configPath string, o cliOverrides) (*app, error) {
	cfg, err := config.NewLoader(configPath).Load()
	if err != nil {
		return nil, err
	}
	cfg = config.ApplyLastUsed(cfg, "")

	if o.plan != "" {
		cfg.Plan.Type = o.plan
	}
	if o.timezone != "" {
		cfg.Display.Timezone = o.timezone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: cfg.Logging.Format,
	})

	format := display.Format(o.format)
	switch format {
	case "", display.FormatTable, display.FormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format: %s", o.format)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		disc:    discovery.New(cfg.LogDirs, log),
		builder: blocks.NewBuilder(pricing.NewEngine(nil, log)),
		fmt: display.New(display.Config{
			Format:       format,
			ColorEnabled: cfg.Display.ColorEnabled,
		}),
	}, nil
}

// newReader builds an incremental reader. A persistent store survives
// restarts; the one-shot commands use a throwaway in-memory store.
func (a *app) newReader(persistent bool) (reader.Reader, func(), error) {
	store := reader.NewMemoryPositionStore()
	cleanup := func() {}

	if persistent {
		path := a.cfg.Storage.CachePath
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		db, err := bolt.Open(path, 0600, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open offset cache: %w", err)
		}
		store, err = reader.NewBoltPositionStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup = func() { _ = db.Close() }
	}

	r, err := reader.New(reader.Config{
		PositionStore: store,
		Parser:        parser.New(a.log),
	}, a.log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}

// scan performs a one-shot read of all logs and builds the block
// history.
func (a *app) scan(ctx context.Context) ([]blocks.SessionBlock, error) {
	files, err := a.disc.Discover()
	if err != nil {
		return nil, err
	}

	r, cleanup, err := a.newReader(false)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	defer func() { _ = r.Close() }()

	var all []parser.UsageRecord
	for _, f := range files {
		res, readErr := r.Read(ctx, f.Path)
		if readErr != nil {
			a.log.Warn("skipping unreadable log file", "path", f.Path, "error", readErr)
			continue
		}
		all = append(all, res.Records...)
	}

	return a.builder.Build(parser.Normalize(all), a.cfg.Now()()), nil
}

// planLimits resolves the configured plan, estimating a custom token
// limit from history when none is set.
func (a *app) planLimits(history []blocks.SessionBlock) (plans.Limits, error) {
	plan, err := a.cfg.PlanType()
	if err != nil {
		return plans.Limits{}, err
	}

	customLimit := a.cfg.Plan.CustomTokenLimit
	if plan == plans.PlanCustom && customLimit == 0 {
		customLimit = plans.EstimateP90Limit(history)
		a.log.Info("estimated custom token limit from history", "limit", customLimit)
	}

	return plans.LimitsFor(plan, customLimit)
}

// runReportCommand renders a daily or monthly summary.
func runReportCommand(configPath string, o cliOverrides, period aggregator.Period) error {
	a, err := newApp(configPath, o)
	if err != nil {
		return err
	}

	history, err := a.scan(context.Background())
	if err != nil {
		return err
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	return a.fmt.FormatReport(os.Stdout, aggregator.Summarize(history, loc, period))
}

// runBlocksCommand lists the session block history.
func runBlocksCommand(configPath string, o cliOverrides) error {
	a, err := newApp(configPath, o)
	if err != nil {
		return err
	}

	history, err := a.scan(context.Background())
	if err != nil {
		return err
	}

	return a.fmt.FormatBlocks(os.Stdout, history)
}

// runMonitorCommand runs the live monitoring loop until interrupted.
func runMonitorCommand(configPath string, o cliOverrides) error {
	a, err := newApp(configPath, o)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A first scan seeds the custom-plan limit estimate; the monitor
	// then rereads through its own persistent reader.
	history, err := a.scan(ctx)
	if err != nil {
		return err
	}
	limit, err := a.planLimits(history)
	if err != nil {
		return err
	}

	r, cleanup, err := a.newReader(true)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = r.Close() }()

	var w watcher.Watcher
	if a.cfg.Refresh.Watch {
		w, err = watcher.New(watcher.Config{}, a.log)
		if err != nil {
			a.log.Warn("file watching unavailable", "error", err)
		}
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	m, err := monitor.New(monitor.Config{
		Discoverer: a.disc,
		Reader:     r,
		Watcher:    w,
		WatchPaths: a.cfg.LogDirs,
		Builder:    a.builder,
		Evaluator:  limits.NewEvaluator(limit, a.log),
		Location:   loc,
		Interval:   a.cfg.Refresh.Interval,
		Now:        a.cfg.Now(),
	}, a.log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := m.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if err := config.SaveLastUsed(a.cfg, ""); err != nil {
			a.log.Debug("failed to save session preferences", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case snap := <-m.Snapshots():
			clearScreen()
			if err := a.fmt.FormatSnapshot(os.Stdout, snap); err != nil {
				return err
			}
		}
	}
}

// clearScreen resets the terminal for the next live frame.
func clearScreen() {
	fmt.Print("\033[H\033[2J")
}
