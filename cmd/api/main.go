package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-restaurant-sync/internal/config"
	"go-restaurant-sync/internal/handler"
	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/repository"
	"go-restaurant-sync/internal/router"
	"go-restaurant-sync/internal/service"
	"go-restaurant-sync/internal/ws"
	"go-restaurant-sync/pkg/database"
	"go-restaurant-sync/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.IsProduction())

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	// 3. Wiring: the hub loads a key's current envelope for new subscribers
	docRepo := repository.NewDocumentRepo(db)
	var docService service.DocumentService
	wsHub := ws.NewHub(func(key string) ([]byte, error) {
		return docService.Payload(key)
	})
	docService = service.NewDocumentService(docRepo, wsHub)
	go wsHub.Run()

	docHandler := handler.NewDocumentHandler(docService, wsHub)
	app := router.NewDocumentServer(docHandler)

	// 4. Graceful Shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Msg("document server listening")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	wsHub.Stop()

	log.Info().Msg("server exited")
}
