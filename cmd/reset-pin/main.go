package main

import (
	"context"
	"flag"
	"time"

	"go-restaurant-sync/internal/config"
	"go-restaurant-sync/internal/store"
	"go-restaurant-sync/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	userID := flag.String("user", "admin", "id of the user whose PIN is reset")
	pin := flag.String("pin", "1234", "new 4-6 digit PIN")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 2. Open store
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	// 3. Rewrite the user inside the shared document
	if err := store.ResetPin(ctx, st, cfg.DocumentKey, *userID, *pin, time.Now()); err != nil {
		log.Fatal().Err(err).Str("user", *userID).Msg("failed to reset PIN")
	}

	log.Info().Str("user", *userID).Msg("PIN has been reset")
}
