package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questkit/quest-engine/internal/config"
	"github.com/questkit/quest-engine/internal/content"
	"github.com/questkit/quest-engine/internal/events"
	"github.com/questkit/quest-engine/internal/handlers"
	"github.com/questkit/quest-engine/internal/logger"
	"github.com/questkit/quest-engine/internal/middleware"
	"github.com/questkit/quest-engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Quest Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	library, err := content.Load(cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to load content", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	log.Info("Content loaded",
		"missions", len(library.Missions()),
		"npcs", len(library.NPCs()))

	store := storage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	broadcaster := events.NewBroadcaster(store.Client(), log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	interactionHandler := handlers.NewInteractionHandler(store, library, broadcaster, log)
	mux.Handle("/v1/interactions", interactionHandler)
	mux.Handle("/v1/interactions/", interactionHandler)

	missionHandler := handlers.NewMissionHandler(store, library, broadcaster, log)
	mux.Handle("/v1/actors/", missionHandler)

	energyHandler := handlers.NewEnergyHandler(store, log, cfg.EnergyMax, cfg.EnergyCostPerLevel,
		time.Duration(cfg.EnergyRegenMinutes)*time.Minute)
	mux.Handle("/v1/energy/", energyHandler)

	quizHandler := handlers.NewQuizHandler(library, log)
	mux.Handle("/v1/quiz/rounds", quizHandler)
	mux.Handle("/v1/quiz/rounds/", quizHandler)

	npcHandler := handlers.NewNPCHandler(library, log)
	mux.Handle("/v1/npcs", npcHandler)
	mux.Handle("/v1/npcs/", npcHandler)

	mux.Handle("/v1/events/", handlers.NewEventsHandler(broadcaster, log))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so the event stream can run long.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
