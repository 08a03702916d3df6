package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arcanaduel/arcana-server-go/internal/auth"
	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/config"
	"github.com/arcanaduel/arcana-server-go/internal/deck"
	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/pve"
	"github.com/arcanaduel/arcana-server-go/internal/room"
	"github.com/arcanaduel/arcana-server-go/internal/server"
	"github.com/arcanaduel/arcana-server-go/internal/store"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arcana duel server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Persistence: Postgres when configured, in-memory otherwise.
	var duelStore store.Store
	if cfg.Database.URL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		duelStore = pgStore
	} else {
		logger.Info("no database configured, using in-memory store")
		duelStore = store.NewMemoryStore()
	}
	defer duelStore.Close()

	index := catalog.Default()
	engine := game.NewEngine(index, catalog.Recipes())
	logger.Info("duel engine initialized",
		zap.Int("templates", index.Len()),
		zap.Int("recipes", len(catalog.Recipes())),
	)

	registry := auth.NewRegistry(cfg.Auth.BcryptCost, logger)
	tokenStore := auth.NewTokenStore(cfg.Auth.TokenTTL)
	go tokenStore.CleanupExpired(ctx)
	logger.Info("auth registry initialized",
		zap.Duration("token_ttl", cfg.Auth.TokenTTL),
	)

	deckService := deck.NewService(index, logger)
	encounterTable := pve.NewTable(index)
	logger.Info("encounter table initialized",
		zap.Int("encounters", len(encounterTable.List())),
	)

	roomManager := room.NewManager(engine, deckService, duelStore, encounterTable, cfg.Room, logger)
	go roomManager.Run(ctx)
	logger.Info("room manager initialized",
		zap.Int("max_rooms", cfg.Room.MaxRooms),
		zap.Duration("idle_timeout", cfg.Room.IdleTimeout),
	)

	srv := server.New(cfg, logger, registry, tokenStore, deckService, roomManager, encounterTable)

	httpServer := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     srv.Handler(),
		ReadTimeout: cfg.Server.ReadTimeout,
		// No WriteTimeout: websocket connections outlive any fixed deadline.
	}

	go func() {
		logger.Info("listening", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(serveErr))
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}

	logger.Info("arcana duel server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
