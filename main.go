package main

import (
	"net"

	"imposter/config"
	"imposter/handlers"
	"imposter/middleware"
	"imposter/routes"
	"imposter/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Core state: one store, one word bank, one state machine.
	store := services.NewRoomStore()
	words := services.NewWordBank()
	game := services.NewGameService(store, words, logger)

	// Session gateway. The hub dispatches into the game service and
	// the service fans state back out through the hub.
	hub := services.NewHub(game, logger)
	game.SetNotifier(hub)
	go hub.Run()

	reaper := services.NewReaper(store, game, cfg.RoomIdleTimeout, logger)
	reaper.Start()
	defer reaper.Stop()

	gameHandler := handlers.NewGameHandler(game)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	routes.SetupRoutes(router, gameHandler, hub, logger)

	addr := net.JoinHostPort(cfg.BindAddress, cfg.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
