package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/tickecs/ecs"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-stress: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	configPath := flag.String("config", "", "Path to a TOML config file. Flags override its values.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The initial number of entities to create.")
	systemCount := flag.Int("systems", 0, "The number of accumulate systems to register.")
	spawnRate := flag.Float64("spawn-rate", 0, "Entities spawned per second.")
	profileMode := flag.String("profile", "", "Profile mode: none, cpu or mem.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Run.Duration = *duration
		case "entities":
			cfg.Run.Entities = *entityCount
		case "systems":
			cfg.Run.Systems = *systemCount
		case "spawn-rate":
			cfg.Run.SpawnRate = *spawnRate
		case "profile":
			cfg.Profile.Mode = *profileMode
		case "gc-pause-metrics":
			cfg.Profile.GCPauseMetrics = *gcPauseMetrics
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return eris.Wrap(err, "logger")
	}
	defer func() { _ = log.Sync() }()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	report, err := run(context.Background(), log, cfg)
	if err != nil {
		log.Error("stress test failed", zap.Error(err))
		return err
	}

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return eris.Wrap(err, "generate report")
	}
	fmt.Println("--- End of Report ---")
	return nil
}

func startProfile(cfg ProfileConfig) interface{ Stop() } {
	switch cfg.Mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	}
	return nil
}

// run populates a world and ticks it as fast as possible until the
// configured duration has elapsed or a tick fails.
func run(ctx context.Context, log *zap.Logger, cfg *Config) (*Report, error) {
	world := ecs.NewWorld(ecs.WithLogger(log.Named("world")))
	defer world.Stop()

	factory := newEntityFactory(cfg.Run)
	states, err := registerSystems(world, factory, cfg.Run, log)
	if err != nil {
		return nil, eris.Wrap(err, "register systems")
	}

	log.Info("populating world", zap.Int("entities", cfg.Run.Entities))
	for i := 0; i < cfg.Run.Entities; i++ {
		if _, err := spawnEntity(world, factory.values(factory.rng.Intn(5)+1, false)); err != nil {
			return nil, eris.Wrap(err, "populate")
		}
	}

	report := &Report{
		Duration:       cfg.Run.Duration,
		Entities:       cfg.Run.Entities,
		Components:     cfg.Run.Components,
		Systems:        cfg.Run.Systems,
		SpawnRate:      cfg.Run.SpawnRate,
		ChurnRate:      cfg.Run.ChurnRate,
		GCPauseMetrics: cfg.Profile.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", cfg.Run.Duration))
	ctx, cancel := context.WithTimeout(ctx, cfg.Run.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := world.Execute(deltaTime.Seconds()); err != nil {
				return nil, eris.Wrapf(err, "update %d", report.TotalUpdates)
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.collect(world, states, 5)

	log.Info("simulation finished",
		zap.Int64("updates", report.TotalUpdates),
		zap.Int("entities", report.World.EntityCount),
	)
	return report, nil
}
