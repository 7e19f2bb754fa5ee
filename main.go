package main

import (
	"flag"
	"log/slog"
	"os"

	"CanvasEdit/internal/applog"
	"CanvasEdit/internal/config"
	"CanvasEdit/internal/media/cvvideo"
	"CanvasEdit/internal/ui"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		applog.Init(os.Stderr, applog.LevelFromEnv("info"))
		slog.Error("loading config", slog.String("path", *configPath), slog.Any("err", err))
		os.Exit(1)
	}
	applog.Init(os.Stderr, applog.LevelFromEnv(cfg.Log.Level))
	slog.Info("starting canvas editor", slog.String("config", *configPath))

	if err := ui.RunApp(cfg, cvvideo.Open); err != nil {
		slog.Error("editor exited", slog.Any("err", err))
		os.Exit(1)
	}
}
