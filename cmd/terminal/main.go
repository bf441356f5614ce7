package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-restaurant-sync/internal/bootstrap"
	"go-restaurant-sync/internal/config"
	"go-restaurant-sync/internal/handler"
	"go-restaurant-sync/internal/replica"
	"go-restaurant-sync/internal/router"
	"go-restaurant-sync/internal/service"
	"go-restaurant-sync/internal/store"
	"go-restaurant-sync/internal/ws"
	"go-restaurant-sync/pkg/jwt"
	"go-restaurant-sync/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.IsProduction())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Store and replica
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer closeStore()

	rep := replica.New(st, replica.Config{
		Key:   cfg.DocumentKey,
		Grace: cfg.SyncGrace(),
		Bootstrap: bootstrap.Options{
			Tables:   cfg.TableCount,
			AdminPIN: cfg.AdminPIN,
		},
	})
	if err := rep.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe")
	}

	// 2. Services and handlers
	issuer := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTExpiration())
	authService := service.NewAuthService(rep, issuer)
	orderService := service.NewOrderService(rep)
	catalogService := service.NewCatalogService(rep)

	wsHub := ws.NewHub(nil)
	termHandler := handler.NewTerminalHandler(orderService, catalogService, wsHub)
	wsHub.Loader = termHandler.StatePayload
	go wsHub.Run()

	updates, stopWatch := rep.Watch()
	go termHandler.Forward(updates)

	authHandler := handler.NewAuthHandler(authService)
	app := router.NewTerminal(authHandler, termHandler, issuer)

	// 3. Graceful Shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Str("store", cfg.StoreDriver).Msg("terminal listening")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down terminal...")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	stopWatch()
	// Close flushes the last pending write.
	if err := rep.Close(); err != nil {
		log.Error().Err(err).Msg("replica close")
	}
	wsHub.Stop()

	log.Info().Msg("terminal exited")
}
