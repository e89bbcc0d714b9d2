package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/game"
	"github.com/pthm-cable/planisuss/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	days := flag.Int("days", 1000, "Stop after N days")
	herbivores := flag.Int("herbivores", -1, "Initial herbivores (-1 = use config)")
	carnivores := flag.Int("carnivores", -1, "Initial carnivores (-1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	snapshotEvery := flag.Int("snapshot-every", 0, "Days between snapshots (0 = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	snapDir := *snapshotDir
	if snapDir == "" && *outputDir != "" && (*snapshotEvery > 0 || cfg.Telemetry.SnapshotEvery > 0) {
		snapDir = *outputDir
	}

	env, err := game.New(game.Options{
		Seed:          rngSeed,
		Config:        cfg,
		Logger:        logger,
		Output:        output,
		SnapshotDir:   snapDir,
		SnapshotEvery: *snapshotEvery,
		LogStats:      *logStats,
	})
	if err != nil {
		slog.Error("failed to create environment", "error", err)
		os.Exit(1)
	}

	nHerb, nCarn := cfg.Population.Herbivores, cfg.Population.Carnivores
	if *herbivores >= 0 {
		nHerb = *herbivores
	}
	if *carnivores >= 0 {
		nCarn = *carnivores
	}
	if err := env.Populate(nHerb, nCarn); err != nil {
		slog.Error("failed to populate", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"days", *days,
		"herbivores", nHerb,
		"carnivores", nCarn,
	)

	start := time.Now()
	ran, err := env.Run(*days)
	if err != nil {
		slog.Error("simulation failed", "day", env.Day(), "error", err)
		os.Exit(1)
	}

	h, c := env.Population()
	slog.Info("simulation finished",
		"days", ran,
		"herbivores", h,
		"carnivores", c,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}
