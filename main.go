package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/decker502/courier/pkg/app"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/embedded"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/storage"
	"github.com/decker502/courier/pkg/systems"
	"github.com/decker502/courier/pkg/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	configDir = flag.String("config", ".", "directory containing courier.yaml")
	dataDir   = flag.String("data", "", "read data/ from this directory instead of the embedded copy")
	level     = flag.String("level", "", "start level (overrides config)")
	seed      = flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	verbose   = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "courier: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadAppConfig(*configDir)
	if err != nil {
		return err
	}
	if *level != "" {
		cfg.StartLevel = *level
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	var logFile io.Writer
	if f, err := logging.OpenLogFile(cfg.LogsDir, cfg.AppName, start); err != nil {
		fmt.Fprintf(os.Stderr, "courier: file logging disabled: %v\n", err)
	} else {
		defer f.Close()
		logFile = f
	}
	logger := logging.Setup(cfg.LogLevel, *verbose, logFile)
	logger.Info().Uint64("seed", cfg.Seed).Str("level", cfg.StartLevel).Msg("courier starting")

	if *dataDir != "" {
		if err := embedded.InitFromDir(*dataDir); err != nil {
			return err
		}
	} else {
		embedded.Init(dataFS)
	}
	data, err := embedded.Data()
	if err != nil {
		return err
	}

	tuning, err := config.LoadTuningConfig(data, cfg.TuningFile)
	if err != nil {
		return err
	}

	provider, err := openTelemetry(cfg, start)
	if err != nil {
		logger.Warn().Err(err).Msg("metrics export disabled")
		provider, _ = telemetry.New(telemetry.Config{})
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("metrics shutdown failed")
		}
	}()

	var store *storage.Manager
	if s, err := storage.Open(cfg.DB); err != nil {
		logger.Warn().Err(err).Msg("run history disabled")
	} else {
		store = s
		defer store.Close()
	}
	recorder := newRunRecorder(cfg.AppName, store)
	recorder.logBest(cfg.StartLevel)

	a, err := app.NewApp(app.Config{
		App:          cfg,
		Tuning:       tuning,
		Data:         data,
		Metrics:      systems.NewMetrics(provider.Meter(systems.MeterName)),
		OnSessionEnd: recorder.Record,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("Courier")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(a)
}

// openTelemetry 启用指标时将玩法计数器导出到
// 每个会话独立的指标文件
func openTelemetry(cfg *config.AppConfig, start time.Time) (*telemetry.Provider, error) {
	if !cfg.Metrics.Enabled {
		return telemetry.New(telemetry.Config{})
	}
	f, err := logging.OpenLogFile(cfg.LogsDir, cfg.AppName+".metrics", start)
	if err != nil {
		return nil, err
	}
	p, err := telemetry.New(telemetry.Config{
		Enabled:     true,
		ServiceName: cfg.AppName,
		Interval:    cfg.Metrics.Interval,
		Writer:      f,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}
