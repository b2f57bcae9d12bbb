// Package service orchestrates imports and dashboard views over the
// dataset, repositories and cache. Every operation returns an OpResult
// so callers get a uniform success/error shape instead of panics or
// raw errors crossing the boundary.
package service

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/cache"
	"github.com/agridash/dealer-insights/internal/dataset"
	"github.com/agridash/dealer-insights/internal/ingest"
	"github.com/agridash/dealer-insights/internal/models"
	"github.com/agridash/dealer-insights/internal/storage"
)

// RecordStore is the persistent-store collaborator for challan records.
type RecordStore interface {
	StoreBatch(records []models.NormalizedRecord, batchID string) (int, error)
	FetchAll() ([]models.NormalizedRecord, error)
	DeleteAll() (int64, error)
}

// BatchStore tracks import batches.
type BatchStore interface {
	Create(meta models.BatchMeta) error
	List(includeDeleted bool) ([]models.BatchMeta, error)
	MarkDeleted(batchID string) error
}

// ImportService runs CSV imports end to end: parse, normalize, persist,
// retain the original file, and swap the in-memory dataset.
type ImportService struct {
	normalizer *ingest.Normalizer
	records    RecordStore
	batches    BatchStore
	files      storage.ObjectStore
	data       *dataset.Store
	cache      *cache.TieredCache
	logger     *zap.Logger
}

// NewImportService creates a new import service.
func NewImportService(
	normalizer *ingest.Normalizer,
	records RecordStore,
	batches BatchStore,
	files storage.ObjectStore,
	data *dataset.Store,
	viewCache *cache.TieredCache,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		normalizer: normalizer,
		records:    records,
		batches:    batches,
		files:      files,
		data:       data,
		cache:      viewCache,
		logger:     logger,
	}
}

// ImportCSV ingests one CSV file. Replace mode supersedes all earlier
// batches; append mode adds on top of them.
func (s *ImportService) ImportCSV(r io.Reader, mode models.ImportMode, sourceName string) models.OpResult[models.ImportSummary] {
	if !mode.Valid() {
		return models.Failf[models.ImportSummary]("invalid import mode: %q", mode)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return models.Failf[models.ImportSummary]("failed to read upload: %v", err)
	}

	raws, err := ingest.ReadCSV(bytes.NewReader(content))
	if err != nil {
		return models.Failf[models.ImportSummary]("failed to parse csv: %v", err)
	}

	normalized, substituted := s.normalizer.NormalizeAll(raws)
	if len(normalized) == 0 {
		return models.Fail[models.ImportSummary]("no records in file")
	}

	batchID := uuid.NewString()
	if mode == models.ImportModeReplace {
		if err := s.supersedeBatches(); err != nil {
			return models.Failf[models.ImportSummary]("failed to supersede earlier batches: %v", err)
		}
	}

	if err := s.batches.Create(models.BatchMeta{
		ID:          batchID,
		SourceName:  sourceName,
		Mode:        string(mode),
		RecordCount: len(normalized),
	}); err != nil {
		return models.Failf[models.ImportSummary]("failed to create batch: %v", err)
	}

	inserted, err := s.records.StoreBatch(normalized, batchID)
	if err != nil {
		return models.Failf[models.ImportSummary]("failed to store records: %v", err)
	}

	// Retaining the original file is best-effort; the import already
	// succeeded once the records are stored.
	var fileID string
	if s.files != nil {
		ref, err := s.files.Upload(sourceName, content)
		if err != nil {
			s.logger.Warn("Failed to retain original file", zap.String("source", sourceName), zap.Error(err))
		} else {
			fileID = ref.PublicID
		}
	}

	s.data.Apply(normalized, mode)
	s.invalidateViews()

	s.logger.Info("Import completed",
		zap.String("batch_id", batchID),
		zap.String("mode", string(mode)),
		zap.Int("rows", len(raws)),
		zap.Int("imported", inserted),
		zap.Int("dates_substituted", substituted))

	return models.OK(models.ImportSummary{
		BatchID:          batchID,
		Mode:             mode,
		RowsRead:         len(raws),
		RecordsImported:  inserted,
		DatesSubstituted: substituted,
		DatasetSize:      s.data.Len(),
		FileID:           fileID,
	})
}

// LoadFromStore rehydrates the in-memory dataset from the persistent
// store, typically at startup.
func (s *ImportService) LoadFromStore() models.OpResult[int] {
	records, err := s.records.FetchAll()
	if err != nil {
		return models.Failf[int]("failed to load records: %v", err)
	}
	s.data.Replace(records)
	return models.OK(len(records))
}

// ListBatches returns import batch metadata, newest first.
func (s *ImportService) ListBatches(includeDeleted bool) models.OpResult[[]models.BatchMeta] {
	batches, err := s.batches.List(includeDeleted)
	if err != nil {
		return models.Failf[[]models.BatchMeta]("failed to list batches: %v", err)
	}
	return models.OK(batches)
}

// DeleteBatch soft-deletes one batch and rebuilds the dataset from the
// remaining ones.
func (s *ImportService) DeleteBatch(batchID string) models.OpResult[int] {
	if err := s.batches.MarkDeleted(batchID); err != nil {
		return models.Failf[int]("failed to delete batch: %v", err)
	}
	res := s.LoadFromStore()
	if !res.Success {
		return res
	}
	s.invalidateViews()
	return res
}

// ClearAll removes every record and batch and empties the dataset.
func (s *ImportService) ClearAll() models.OpResult[int64] {
	deleted, err := s.records.DeleteAll()
	if err != nil {
		return models.Failf[int64]("failed to delete records: %v", err)
	}
	if err := s.supersedeBatches(); err != nil {
		return models.Failf[int64]("failed to delete batches: %v", err)
	}
	s.data.Clear()
	s.invalidateViews()
	s.logger.Info("All records cleared", zap.Int64("deleted", deleted))
	return models.OK(deleted)
}

// ListFiles enumerates retained original files.
func (s *ImportService) ListFiles() models.OpResult[[]models.FileRef] {
	if s.files == nil {
		return models.OK[[]models.FileRef](nil)
	}
	refs, err := s.files.List()
	if err != nil {
		return models.Failf[[]models.FileRef]("failed to list files: %v", err)
	}
	return models.OK(refs)
}

// DeleteFile removes one retained original file.
func (s *ImportService) DeleteFile(publicID string) models.OpResult[string] {
	if s.files == nil {
		return models.Fail[string]("file retention is disabled")
	}
	if err := s.files.Delete(publicID); err != nil {
		return models.Failf[string]("failed to delete file: %v", err)
	}
	return models.OK(publicID)
}

func (s *ImportService) supersedeBatches() error {
	active, err := s.batches.List(false)
	if err != nil {
		return err
	}
	for _, batch := range active {
		if err := s.batches.MarkDeleted(batch.ID); err != nil {
			return fmt.Errorf("failed to mark batch %s deleted: %w", batch.ID, err)
		}
	}
	return nil
}

func (s *ImportService) invalidateViews() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(); err != nil {
		s.logger.Warn("Failed to invalidate view cache", zap.Error(err))
	}
}
