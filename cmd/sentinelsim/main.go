package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinel/internal/ai"
	"sentinel/internal/config"
	"sentinel/internal/events"
	"sentinel/internal/grid"
	"sentinel/internal/levelstore"
	"sentinel/internal/sim"
	"sentinel/internal/vision"
)

// frame stands in for a render context; the tile visibility only needs it
// to be non-nil.
type frame struct {
	tick int
}

func main() {
	defaults, err := settingsFromEnv(defaultSettings())
	if err != nil {
		log.Fatalf("read settings from environment: %v", err)
	}

	run := defaults
	var (
		cfgPath   string
		cachePath string
		realtime  bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to a JSON or YAML configuration file")
	flag.IntVar(&run.Level, "level", defaults.Level, "level number to play (env SENTINEL_LEVEL)")
	flag.IntVar(&run.Ticks, "ticks", defaults.Ticks, "number of ticks to run (env SENTINEL_TICKS)")
	flag.DurationVar(&run.Step, "step", defaults.Step, "simulated time between ticks (env SENTINEL_STEP)")
	flag.IntVar(&run.Energy, "energy", defaults.Energy, "starting energy override, 0 keeps the config value (env SENTINEL_ENERGY)")
	flag.StringVar(&cachePath, "cache", "", "level store file to load the level from")
	flag.BoolVar(&realtime, "realtime", false, "wait one step of wall time between ticks")
	flag.Parse()

	logger := log.New(log.Writer(), "sentinelsim ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := run.apply(cfg); err != nil {
		log.Fatalf("run settings: %v", err)
	}

	opts := []sim.Option{sim.WithLogger(logger)}
	if cachePath != "" {
		store, err := levelstore.OpenDiskStore(cachePath)
		if err != nil {
			log.Fatalf("open level store: %v", err)
		}
		defer store.Close()
		opts = append(opts, sim.WithStore(store))
	}

	s, err := sim.New(cfg, run.Level, func(g *grid.Grid) ai.Visibility { return vision.New(g) }, opts...)
	if err != nil {
		log.Fatalf("initialise simulator: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := play(ctx, s, run.Ticks, run.Step, realtime, logger); err != nil {
		logger.Printf("stopped: %v", err)
	}
	logger.Printf("final energy %d outcome %q", s.Economy().Energy(), s.Outcome())
}

func play(ctx context.Context, s *sim.Simulator, ticks int, step time.Duration, realtime bool, logger *log.Logger) error {
	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(step)
		defer ticker.Stop()
	}
	for i := 0; i < ticks; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		now := time.Duration(i) * step
		for _, ev := range s.Handle(now, frame{tick: i}) {
			logger.Printf("%v %v", now, ev)
			if ev.Kind == events.GameEnded {
				return nil
			}
		}
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
