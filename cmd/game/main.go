package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/rts-command/internal/config"
	"github.com/Garsondee/rts-command/internal/game"
	"github.com/Garsondee/rts-command/internal/logging"
	"github.com/Garsondee/rts-command/internal/view"
)

func main() {
	configDir := flag.String("config", ".", "directory holding "+config.FileName+".*")
	flag.Parse()
	os.Exit(run(*configDir))
}

func run(configDir string) int {
	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatal(err)
	}

	var logFile *os.File
	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
			log.Fatal(err)
		}
		logFile, err = os.Create(logging.LogFilePath(cfg.LogsDir, "rts-command", time.Now()))
		if err != nil {
			log.Fatal(err)
		}
		defer logFile.Close()
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)
	if logFile != nil {
		logger = logging.NewWithFile(cfg.LogLevel, os.Stdout, logFile)
	}

	tuning := cfg.Tuning()
	sim := game.NewSim(tuning, cfg.Seed)
	sim.SetLogger(logger)
	sim.LoadUnits(cfg.AssetLoader(), tuning.UnitCount)
	logger.Info().
		Int("units", tuning.UnitCount).
		Str("model", tuning.MotionModel.String()).
		Str("formation", tuning.FormationShape.String()).
		Msg("starting")

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	defer sim.Teardown()
	if err := ebiten.RunGame(view.New(sim, logger)); err != nil {
		logger.Error().Err(err).Msg("game loop exited")
		return 1
	}
	return 0
}
