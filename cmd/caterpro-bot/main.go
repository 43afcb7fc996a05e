package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caterpro-ai/internal/app"
	"caterpro-ai/internal/config"
	"caterpro-ai/internal/database"
	"caterpro-ai/internal/events"
	"caterpro-ai/internal/generate"
	"caterpro-ai/internal/llm"
	"caterpro-ai/internal/maintenance"
	"caterpro-ai/internal/menu"
	"caterpro-ai/internal/metrics"
	"caterpro-ai/internal/share"
	"caterpro-ai/internal/store"
	"caterpro-ai/internal/subscription"
	"caterpro-ai/internal/suppliers"
	"caterpro-ai/internal/telegram"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	if closer, ok := geminiClient.(llm.Closer); ok {
		defer closer.Close()
	}

	// Groq handles the lighter single-item calls; Gemini does full menus.
	generator := generate.NewGenerator(geminiClient)
	if cfg.GroqAPIKey != "" {
		generator = generator.WithItemGenerator(llm.NewGroqClient(cfg))
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	bus := events.NewBus()
	stateStore, err := store.New(cfg.StatePath, bus, logger)
	if err != nil {
		log.Fatalf("Failed to initialize state store: %v", err)
	}

	subs := subscription.NewManager(stateStore.Load().Subscription, stateStore, bus)
	menus := menu.NewRepository(db.SQL)
	history := generate.NewHistoryRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	shares := share.NewService(db.SQL, menus, cfg.ShareSigningKey, cfg.ShareBaseURL)

	application := app.NewApp(
		generator,
		menus,
		history,
		metricsStore,
		subs,
		stateStore,
		shares,
		suppliers.NewFinder(geminiClient, cfg.SupplierDirectoryURL),
		logger,
	)

	scheduler, err := maintenance.Start(history, metricsStore, shares, logger)
	if err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}
	defer scheduler.Shutdown()

	bot, err := telegram.NewBot(cfg, application, logger)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		logger.Info("telegram bot server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server exiting")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}
