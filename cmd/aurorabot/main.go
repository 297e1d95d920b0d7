package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sonroyaalmerol/aurorabot/internal/config"
	"github.com/sonroyaalmerol/aurorabot/internal/handlers"
	"github.com/sonroyaalmerol/aurorabot/internal/logging"
	"github.com/sonroyaalmerol/aurorabot/internal/player"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatal(err)
	}
	db, err := repository.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := repository.NewRepo(db)
	bot := handlers.NewBot(cfg, repo, player.NewPlayerManager())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting bot", "dataDir", cfg.DataDir, "owners", len(cfg.Owners))
	if err := bot.Run(ctx); err != nil {
		slog.Error("bot stopped", "err", err)
		os.Exit(1)
	}
}
