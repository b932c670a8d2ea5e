package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calvinwijaya/counterpoint/internal/api"
	"github.com/calvinwijaya/counterpoint/internal/game"
	"github.com/calvinwijaya/counterpoint/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	var (
		port        = flag.String("port", "8080", "Server port")
		frontendURL = flag.String("frontend", "http://localhost:5173", "Frontend URL for CORS")
		seed        = flag.Int64("seed", 0, "Seed for dealing (0 uses the clock)")
		target      = flag.Int("target", 0, "Score that ends a match (0 for none)")
		deals       = flag.Int("deals", 0, "Number of deals in a match (0 for none)")
		dev         = flag.Bool("dev", false, "Human readable debug logging")
	)
	flag.Parse()
	if env := os.Getenv("PORT"); env != "" {
		*port = env
	}

	logger, err := newLogger(*dev)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rules := game.DefaultRules()
	rules.TargetScore = *target
	rules.DealLimit = *deals
	if err := rules.Validate(); err != nil {
		logger.Fatal("invalid rules", zap.Error(err))
	}

	// Initialize the store
	tableStore := store.NewMemoryStore()
	logger.Info("in-memory table store initialized")

	// Initialize WebSocket hub
	hub := api.NewHub(logger.Named("hub"))
	go hub.Run()
	logger.Info("websocket hub started")

	// Initialize API handlers
	handlers := api.NewHandlers(tableStore, hub, logger.Named("api"), api.Config{
		Rules: rules,
		Seed:  *seed,
	})

	// Set up router
	r := mux.NewRouter()
	handlers.RegisterRoutes(r)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{*frontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server",
			zap.String("port", *port),
			zap.Int("target_score", rules.TargetScore),
			zap.Int("deal_limit", rules.DealLimit),
			zap.Bool("seeded", *seed != 0),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a termination signal
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
