package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/cache"
	"github.com/agridash/dealer-insights/internal/config"
	"github.com/agridash/dealer-insights/internal/dataset"
	"github.com/agridash/dealer-insights/internal/filter"
	"github.com/agridash/dealer-insights/internal/ingest"
	httpserver "github.com/agridash/dealer-insights/internal/interfaces/http"
	"github.com/agridash/dealer-insights/internal/repository"
	"github.com/agridash/dealer-insights/internal/service"
	"github.com/agridash/dealer-insights/internal/storage"
	"github.com/agridash/dealer-insights/pkg/database"
	"github.com/agridash/dealer-insights/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting dealer insights service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Two-tier view cache: in-process map in front of badger. An empty
	// cache dir runs memory-only.
	var slow cache.Tier
	var badgerCache *cache.BadgerCache
	if cfg.Cache.Dir != "" {
		badgerCache, err = cache.OpenBadger(cfg.Cache.Dir, logger)
		if err != nil {
			logger.Fatal("Failed to open cache store", zap.Error(err))
		}
		defer badgerCache.Close()
		slow = badgerCache
	}
	viewCache := cache.NewTieredCache(cache.NewMemoryCache(), slow, cache.NewStats(), logger)

	var files storage.ObjectStore
	if cfg.Storage.UploadDir != "" {
		files, err = storage.NewLocalObjectStore(cfg.Storage.UploadDir, logger)
		if err != nil {
			logger.Fatal("Failed to initialize upload storage", zap.Error(err))
		}
	}

	recordRepo := repository.NewRecordRepository(db.DB, logger)
	batchRepo := repository.NewBatchRepository(db.DB, logger)
	data := dataset.NewStore(logger)

	imports := service.NewImportService(
		ingest.NewNormalizer(logger),
		recordRepo, batchRepo, files, data, viewCache, logger)
	dashboard := service.NewDashboardService(data, viewCache, cfg.Cache.ViewTTL, filter.Config{
		ChunkSize:     cfg.Filter.ChunkSize,
		SyncThreshold: cfg.Filter.SyncThreshold,
		Debounce:      cfg.Filter.Debounce,
	}, logger)

	if res := imports.LoadFromStore(); res.Success {
		logger.Info("Dataset loaded from store", zap.Int("records", res.Data))
	} else {
		logger.Fatal("Failed to load dataset", zap.String("error", res.Error))
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, imports, dashboard, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
