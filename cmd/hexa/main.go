// Command hexa opens a window showing procedurally generated hex terrain with a keyboard-driven
// control panel.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/hexa/engine"
	"github.com/Carmen-Shannon/hexa/engine/reload"
	"github.com/Carmen-Shannon/hexa/engine/renderer"
	"github.com/Carmen-Shannon/hexa/engine/scene"
	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/terrain"
	"github.com/Carmen-Shannon/hexa/engine/window"
	"github.com/Carmen-Shannon/hexa/internal/config"
	"github.com/Carmen-Shannon/hexa/internal/logger"
	"go.uber.org/zap"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	cfg, err := config.Load(flags.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flags.Apply(cfg)

	log, err := logger.New(logger.DefaultConfig(cfg.Logging.Level, cfg.Logging.LogFile))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("hexa stopped", zap.Error(err))
		// os.Exit skips the deferred Sync
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	// ── Terrain ─────────────────────────────────────────────────────────
	policy, err := terrain.ParsePolicy(cfg.Terrain.Policy)
	if err != nil {
		return err
	}
	noise, err := terrain.ParseNoiseKind(cfg.Terrain.Noise)
	if err != nil {
		return err
	}
	gen := terrain.NewGenerator(
		terrain.WithPolicy(policy),
		terrain.WithNoise(noise),
		terrain.WithSparseColumns(cfg.Terrain.SparseColumns),
	)

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithWaitTimeout(time.Duration(cfg.Window.WaitTimeoutMS)*time.Millisecond),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	msaa, err := renderer.ParseMSAA(cfg.Renderer.MSAA)
	if err != nil {
		return err
	}
	present := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		present = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithMSAA(msaa),
		renderer.WithPresentMode(present),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.SoftwareAdapter),
		renderer.WithCapacity(cfg.Renderer.Capacity),
		renderer.WithLogger(log.Named("renderer")),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	// ── Settings ────────────────────────────────────────────────────────
	store := storage.NewStore(cfg.Settings.Path, storage.WithLogger(log.Named("storage")))

	opts := []engine.EngineBuilderOption{
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithStore(store),
		engine.WithLogger(log.Named("engine")),
		engine.WithProfiling(cfg.Renderer.Profile),
		engine.WithSceneFactory(func(s storage.Settings) scene.Scene {
			return scene.NewScene(
				scene.WithSettings(s),
				scene.WithGenerator(gen),
				scene.WithLogger(log.Named("scene")),
			)
		}),
	}

	if cfg.Reload.Enabled {
		w, err := reload.NewWatcher(store.Path(),
			reload.WithDebounce(time.Duration(cfg.Reload.DebounceMS)*time.Millisecond),
			reload.WithLogger(log.Named("reload")),
		)
		if err != nil {
			log.Warn("settings hot reload disabled", zap.Error(err))
		} else {
			defer w.Close()
			opts = append(opts, engine.WithReload(w.Events()))
		}
	}

	eng, err := engine.NewEngine(opts...)
	if err != nil {
		return err
	}

	log.Info("hexa started",
		zap.String("policy", string(policy)),
		zap.String("noise", string(noise)),
		zap.Int("msaa", int(msaa)),
		zap.String("settings", store.Path()),
	)
	eng.Run()
	return nil
}
