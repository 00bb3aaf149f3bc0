package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chunkstream/internal/config"
	"chunkstream/internal/mesh"
	"chunkstream/internal/preview"
	"chunkstream/internal/sim"
	"chunkstream/internal/terrain"
)

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain runs the streamer with args and returns the process exit code. All
// deferred cleanup has run by the time it returns.
func runMain(args []string) int {
	var (
		cfgPath     string
		logLevel    string
		devLogs     bool
		metricsAddr string
		previewDir  string
		runFor      time.Duration
		walkSpeed   float64
	)
	flags := flag.NewFlagSet("chunkstream", flag.ContinueOnError)
	flags.StringVar(&cfgPath, "config", "", "path to chunkstream configuration file (json or yaml)")
	flags.StringVar(&logLevel, "log-level", "", "override the configured log level")
	flags.BoolVar(&devLogs, "dev", false, "use human readable development logging")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "override the prometheus listen address; \"-\" disables it")
	flags.StringVar(&previewDir, "preview-dir", "", "write isometric previews of resident chunks here on exit")
	flags.DurationVar(&runFor, "duration", 0, "stop after this long; zero runs until interrupted")
	flags.Float64Var(&walkSpeed, "walk-speed", 8, "viewpoint speed along +x in blocks per second")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if _, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Printf("sync config from env: %v", err)
		return 1
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if devLogs {
		cfg.Log.Development = true
	}
	if metricsAddr != "" {
		cfg.Metrics.ListenAddress = metricsAddr
	}
	if previewDir != "" {
		cfg.Preview.Directory = previewDir
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Printf("initialise logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signalContext(logger)
	defer cancel()
	if runFor > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, runFor)
		defer stop()
	}

	if err := run(ctx, cfg, walkSpeed, logger); err != nil {
		logger.Error("chunkstream exited with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, walkSpeed float64, logger *zap.Logger) error {
	tiles, err := cfg.TileTable()
	if err != nil {
		return err
	}
	generator, err := terrain.New(cfg.Terrain.Kind, cfg.Terrain.Seed)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	meshes := sim.NewMeshStore()
	simulation, err := sim.New(sim.Config{
		Stream:     cfg.StreamSettings(),
		Dimensions: cfg.Dimensions(),
		Mesher:     mesh.Variant(cfg.Mesher),
		Materials:  mesh.Materials{Atlas: cfg.AtlasLayout(), Tiles: tiles},
	}, generator, meshes, sim.WithLogger(logger), sim.WithRegisterer(registry))
	if err != nil {
		return err
	}
	defer simulation.Close()

	if addr := cfg.Metrics.ListenAddress; addr != "" && addr != "-" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(registry)}
		go func() {
			logger.Info("Serving metrics", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	dim := cfg.Dimensions()
	start := mgl32.Vec3{float32(dim.X) / 2, float32(dim.Y) / 2, float32(dim.Z) / 2}
	vp := newWalker(start, mgl32.Vec3{float32(walkSpeed), 0, 0})

	logger.Info("Starting chunk streaming",
		zap.String("mesher", cfg.Mesher),
		zap.String("terrain", cfg.Terrain.Kind),
		zap.String("atlas_texture", cfg.Atlas.Texture),
		zap.Int("view_radius", cfg.Stream.ViewRadius),
		zap.Int("unload_radius", cfg.Stream.UnloadRadius),
		zap.Duration("tick_period", cfg.Stream.TickPeriod.Duration()),
	)
	runner := sim.NewRunner(simulation, vp, cfg.Stream.FramePeriod.Duration(), logger.Named("runner"))
	if err := runner.Run(ctx); err != nil {
		return err
	}

	quads, triangles := meshes.Totals()
	logger.Info("Stopped chunk streaming",
		zap.Int("resident", simulation.Store().Len()),
		zap.Int("saved", simulation.SaveCache().Len()),
		zap.Int("quads", quads),
		zap.Int("triangles", triangles),
	)

	if dir := cfg.Preview.Directory; dir != "" {
		for _, coord := range simulation.Store().Coords() {
			ch, _ := simulation.Store().Get(coord)
			if ch.Grid.Solid() == 0 {
				continue
			}
			path, err := preview.Save(ch.Grid, coord, dir)
			if err != nil {
				return err
			}
			logger.Debug("Wrote chunk preview", zap.String("path", path))
		}
	}
	return nil
}

func metricsMux(registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

func signalContext(logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			logger.Error("Forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
