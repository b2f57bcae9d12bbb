// Command import-csv loads a delivery-challan CSV into the persistent
// store without going through the HTTP API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/config"
	"github.com/agridash/dealer-insights/internal/ingest"
	"github.com/agridash/dealer-insights/internal/models"
	"github.com/agridash/dealer-insights/internal/repository"
	"github.com/agridash/dealer-insights/pkg/database"
	"github.com/agridash/dealer-insights/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	var (
		filePath   = flag.String("file", "", "path to the CSV file to import")
		mode       = flag.String("mode", "replace", "import mode: replace or append")
		configPath = flag.String("config", "configs/config.yaml", "path to the config file")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: import-csv -file <path> [-mode replace|append]")
		os.Exit(2)
	}
	importMode := models.ImportMode(*mode)
	if !importMode.Valid() {
		fmt.Fprintf(os.Stderr, "invalid mode %q: must be replace or append\n", *mode)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Keep the logger on stderr and quiet so it does not fight the
	// progress bar for the terminal.
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      "warn",
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	raws, err := ingest.ReadCSV(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse CSV: %v\n", err)
		os.Exit(1)
	}

	normalizer := ingest.NewNormalizer(logger)
	bar := progressbar.Default(int64(len(raws)), "normalizing")

	records := make([]models.NormalizedRecord, 0, len(raws))
	substituted := 0
	for _, raw := range raws {
		rec, subst := normalizer.Normalize(raw)
		if subst {
			substituted++
		}
		records = append(records, rec)
		_ = bar.Add(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No records in file")
		os.Exit(1)
	}

	batchRepo := repository.NewBatchRepository(db.DB, logger)
	recordRepo := repository.NewRecordRepository(db.DB, logger)

	if importMode == models.ImportModeReplace {
		active, err := batchRepo.List(false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list batches: %v\n", err)
			os.Exit(1)
		}
		for _, batch := range active {
			if err := batchRepo.MarkDeleted(batch.ID); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to supersede batch %s: %v\n", batch.ID, err)
				os.Exit(1)
			}
		}
	}

	batchID := uuid.NewString()
	if err := batchRepo.Create(models.BatchMeta{
		ID:          batchID,
		SourceName:  *filePath,
		Mode:        string(importMode),
		RecordCount: len(records),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create batch: %v\n", err)
		os.Exit(1)
	}

	inserted, err := recordRepo.StoreBatch(records, batchID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to store records: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Import finished", zap.String("batch_id", batchID))
	fmt.Printf("Imported %d records (batch %s, mode %s)\n", inserted, batchID, importMode)
	if substituted > 0 {
		fmt.Printf("Warning: %d records had unparseable dates substituted with the current time\n", substituted)
	}
}
