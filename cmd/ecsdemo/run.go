package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/config"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/core/event"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
	"github.com/l1jgo/ecsrt/internal/prefab"
	"github.com/l1jgo/ecsrt/internal/scripting"
	"github.com/l1jgo/ecsrt/internal/system"
	"github.com/l1jgo/ecsrt/internal/telemetry"
)

func run(parent context.Context, opts *options) error {
	// 1. Load config
	cfg, err := config.Load(opts.resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.frames >= 0 {
		cfg.Loop.MaxFrames = opts.frames
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	defer zap.ReplaceGlobals(log)()

	printBanner(cfg.Context.Name)

	// 3. Metrics
	if cfg.Metrics.StatsdAddress != "" {
		if err := telemetry.Init(cfg.Metrics.StatsdAddress, cfg.Metrics.Namespace, cfg.Metrics.Tags); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			if err := telemetry.Close(); err != nil {
				log.Warn("close statsd client", zap.Error(err))
			}
		}()
		printOK("statsd " + cfg.Metrics.StatsdAddress)
	}

	// 4. Context and event bridge
	registry := ecs.NewRegistry()
	component.Register(registry)
	ctx := ecs.NewContext(
		ecs.WithRegistry(registry),
		ecs.WithName(cfg.Context.Name),
		ecs.WithStartCreationIndex(cfg.Context.StartCreationIndex),
		ecs.WithLogger(log.Named("ecs")),
	)
	bus := event.NewBus()
	detach := event.Observe(ctx, bus)
	defer detach()

	// 5. Prefabs
	printSection("data")
	lib, err := prefab.LoadDir(cfg.Prefabs.Dir)
	if err != nil {
		return fmt.Errorf("load prefabs: %w", err)
	}
	builder := prefab.NewBuilder()
	component.Bind(builder)
	for _, name := range lib.Names() {
		spec, _ := lib.Get(name)
		if err := builder.Validate(spec); err != nil {
			return fmt.Errorf("prefab %s: %w", name, err)
		}
	}
	for _, name := range cfg.Prefabs.Spawn {
		if _, ok := lib.Get(name); !ok {
			return fmt.Errorf("prefabs.spawn names unknown prefab %q", name)
		}
	}
	spawner := prefab.NewSpawner(ctx, lib, builder)
	printStat("components", registry.Count())
	printStat("prefabs", lib.Count())

	// 6. Scripts
	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, ctx, spawner, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		printStat("script systems", len(engine.SystemNames()))
	}
	fmt.Println()

	// 7. Systems
	clock := &system.Clock{}
	cleanup := system.NewCleanupSystem(registry, log)
	root := coresys.NewContainer("demo",
		coresys.WithContext(ctx),
		coresys.WithLogger(log),
		coresys.WithTiming(cfg.Metrics.PhaseTiming),
	)
	for _, s := range []coresys.System{
		system.NewDispatchSystem(ctx, bus, log),
		system.NewSpawnSystem(ctx, spawner, cfg.Prefabs.Spawn, log),
		system.NewMoveSystem(ctx),
		system.NewLifetimeSystem(ctx, clock),
	} {
		if err := root.Add(s); err != nil {
			return fmt.Errorf("register system: %w", err)
		}
	}
	if _, err := root.AddReactiveSystem(cleanup); err != nil {
		return fmt.Errorf("register system: %w", err)
	}
	if engine != nil {
		scripts := coresys.NewContainer("scripts",
			coresys.WithContext(ctx),
			coresys.WithLogger(log),
			coresys.WithTiming(cfg.Metrics.PhaseTiming),
		)
		for _, s := range engine.Systems() {
			if err := scripts.Add(s); err != nil {
				return fmt.Errorf("register script system: %w", err)
			}
		}
		if err := root.AddContainer(scripts); err != nil {
			return fmt.Errorf("register script systems: %w", err)
		}
	}

	// 8. Hot reload
	var watchEvents <-chan string
	var watchErrors <-chan error
	if cfg.Prefabs.Watch {
		dirs := []string{cfg.Prefabs.Dir}
		if engine != nil {
			dirs = append(dirs, cfg.Scripting.Dir)
		}
		watcher, err := prefab.NewWatcher(dirs...)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer watcher.Close()
		watchEvents, watchErrors = watcher.Events, watcher.Errors
	}

	if err := root.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	// 9. Loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()
	var fixedC <-chan time.Time
	if cfg.Loop.FixedTickRate > 0 {
		fixed := time.NewTicker(cfg.Loop.FixedTickRate)
		defer fixed.Stop()
		fixedC = fixed.C
	}

	printSection("running")
	printReady(fmt.Sprintf("loop started (tick: %s, fixed: %s)", cfg.Loop.TickRate, cfg.Loop.FixedTickRate))
	fmt.Println()

	loopErr := loop(parent, root, clock, engine, spawner, log, cfg.Loop.MaxFrames,
		ticker.C, fixedC, shutdownCh, watchEvents, watchErrors)

	// 10. Shutdown
	if err := root.Teardown(); err != nil && loopErr == nil {
		loopErr = fmt.Errorf("teardown: %w", err)
	}
	root.DeactivateReactiveSystems()
	ctx.ClearGroups()
	if err := ctx.Reset(); err != nil {
		log.Warn("reset context", zap.Error(err))
	}

	printSection("stopped")
	printStat("frames", int(clock.Frame))
	printStat("expired entities destroyed", cleanup.Destroyed())
	return loopErr
}

func loop(
	parent context.Context,
	root *coresys.Container,
	clock *system.Clock,
	engine *scripting.Engine,
	spawner *prefab.Spawner,
	log *zap.Logger,
	maxFrames int,
	tick, fixed <-chan time.Time,
	shutdownCh <-chan os.Signal,
	watchEvents <-chan string,
	watchErrors <-chan error,
) error {
	for {
		select {
		case <-tick:
			frame := clock.Advance()
			if engine != nil {
				engine.SetFrame(frame)
			}
			if err := root.Execute(); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
			if err := root.Cleanup(); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
			if maxFrames > 0 && frame >= uint64(maxFrames) {
				log.Info("frame limit reached", zap.Uint64("frame", frame))
				return nil
			}
		case <-fixed:
			if err := root.FixedExecute(); err != nil {
				return fmt.Errorf("fixed execute at frame %d: %w", clock.Frame, err)
			}
		case path, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			reload(path, engine, spawner, log)
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			log.Warn("watcher error", zap.Error(err))
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		case <-parent.Done():
			return nil
		}
	}
}

// reload applies one changed file. Failures keep the previous definitions.
func reload(path string, engine *scripting.Engine, spawner *prefab.Spawner, log *zap.Logger) {
	if prefab.IsScript(path) {
		if engine == nil {
			return
		}
		if err := engine.Reload(); err != nil {
			log.Warn("script reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		log.Info("scripts reloaded", zap.String("path", path))
		return
	}
	if err := spawner.Reload(); err != nil {
		log.Warn("prefab reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("prefabs reloaded", zap.String("path", path), zap.Int("prefabs", spawner.Library().Count()))
}
