package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/advisor"
	"github.com/UkralStul/wikikisan-service/internal/api"
	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/UkralStul/wikikisan-service/internal/config"
	"github.com/UkralStul/wikikisan-service/internal/market"
	"github.com/UkralStul/wikikisan-service/internal/storage"
	"github.com/UkralStul/wikikisan-service/internal/storage/inmemory"
	"github.com/UkralStul/wikikisan-service/internal/storage/mongo"
	"github.com/UkralStul/wikikisan-service/internal/storage/postgres"
	"github.com/UkralStul/wikikisan-service/internal/translate"
	"github.com/UkralStul/wikikisan-service/internal/weather"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// Global flags
	configPath  string
	storageType string
	verbose     bool
	seedOnStart bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wikikisan",
	Short: "WikiKisan backend: community feed, weather, market prices and AI advice",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample farmer posts into the configured storage",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&storageType, "storage", "", "Storage type (in-memory, postgres or mongo); overrides config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Fill the store with sample posts on start")
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Fill the store with sample posts on start")

	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if storageType != "" {
		// флаг сильнее файла и окружения
		_ = os.Setenv("STORAGE_TYPE", storageType)
	}
	return config.Load(configPath)
}

// openStore открывает выбранное хранилище; close освобождает ресурсы.
func openStore(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	logger.Info("Opening storage", zap.String("type", cfg.Storage.Type))

	switch cfg.Storage.Type {
	case "postgres":
		level := gormlogger.Warn
		if verbose {
			level = gormlogger.Info
		}
		store, err := postgres.New(cfg.Storage.DatabaseURL, level)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "mongo":
		store, err := mongo.New(ctx, cfg.Storage.DatabaseURL, cfg.Storage.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(ctx)
		}, nil
	default:
		return inmemory.New(), func() {}, nil
	}
}

func newCommunityService(cfg *config.Config, store storage.Storage) *community.Service {
	return community.NewService(store, community.NewHub(cfg.Community.StreamBuffer), community.Options{
		DefaultAuthor:    cfg.Community.DefaultAuthor,
		StrictCategories: cfg.Community.StrictCategories,
		FeedWindow:       community.FeedWindow(cfg.Community.FeedWindow),
		TrendingTags:     cfg.Community.TrendingTags,
		Logger:           logger.Named("community"),
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting up WikiKisan services",
		zap.String("storage", cfg.Storage.Type),
		zap.String("feed_window", cfg.Community.FeedWindow),
		zap.Bool("strict_categories", cfg.Community.StrictCategories))

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStore()

	svc := newCommunityService(cfg, store)
	if seedOnStart {
		if err := fillWithSampleData(ctx, svc); err != nil {
			return err
		}
	}

	provider, err := advisor.NewProvider(ctx, cfg.Advisor.Provider, cfg.Advisor.APIKey, cfg.Advisor.Model, cfg.Advisor.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create advisor provider: %w", err)
	}
	if provider == nil {
		logger.Warn("Advisor API key is not set; advice requests will return a fallback message")
	}

	handler := api.NewHandler(api.Deps{
		Community: svc,
		Store:     store,
		Advisor: advisor.New(provider,
			config.Timeout(cfg.Advisor.Timeout, 30*time.Second),
			logger.Named("advisor")),
		Weather: weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey,
			config.Timeout(cfg.Weather.Timeout, 10*time.Second)),
		Market: market.NewClient(cfg.Market.BaseURL, cfg.Market.Resource, cfg.Market.APIKey,
			config.Timeout(cfg.Market.Timeout, 10*time.Second)),
		Translator: translate.New(cfg.Translate.BaseURL, cfg.Translate.Supported,
			config.Timeout(cfg.Translate.Timeout, 10*time.Second),
			logger.Named("translate")),
		Logger:      logger.Named("http"),
		Debug:       cfg.Server.Debug,
		Environment: cfg.Server.Environment,
		Version:     cfg.Server.Version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  config.Timeout(cfg.Server.ReadTimeout, 5*time.Second),
		WriteTimeout: config.Timeout(cfg.Server.WriteTimeout, 60*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("url", "http://localhost"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down WikiKisan services")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			config.Timeout(cfg.Server.ShutdownTimeout, 10*time.Second))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Type == "in-memory" {
		logger.Warn("Seeding in-memory storage has no lasting effect; use `serve --seed` instead")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStore()

	return fillWithSampleData(ctx, newCommunityService(cfg, store))
}
