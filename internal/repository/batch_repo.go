package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
)

// BatchRepository tracks import batches with soft deletion.
type BatchRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBatchRepository creates a new batch repository.
func NewBatchRepository(db *sql.DB, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{db: db, logger: logger}
}

// Create records a new import batch.
func (r *BatchRepository) Create(meta models.BatchMeta) error {
	_, err := r.db.Exec(`
		INSERT INTO import_batches (id, source_name, mode, record_count)
		VALUES (?, ?, ?, ?)
	`, meta.ID, meta.SourceName, meta.Mode, meta.RecordCount)
	if err != nil {
		r.logger.Error("Failed to create batch", zap.String("batch_id", meta.ID), zap.Error(err))
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// List returns batch metadata, newest first, optionally including batches
// marked deleted.
func (r *BatchRepository) List(includeDeleted bool) ([]models.BatchMeta, error) {
	query := `
		SELECT id, source_name, mode, record_count, deleted, created_at
		FROM import_batches
	`
	if !includeDeleted {
		query += ` WHERE deleted = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list batches", zap.Error(err))
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []models.BatchMeta
	for rows.Next() {
		var meta models.BatchMeta
		var deleted int
		if err := rows.Scan(&meta.ID, &meta.SourceName, &meta.Mode, &meta.RecordCount, &deleted, &meta.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		meta.Deleted = deleted != 0
		batches = append(batches, meta)
	}
	return batches, rows.Err()
}

// MarkDeleted soft-deletes a batch; its records stop appearing in FetchAll
// but stay on disk for audit.
func (r *BatchRepository) MarkDeleted(batchID string) error {
	result, err := r.db.Exec(`UPDATE import_batches SET deleted = 1 WHERE id = ?`, batchID)
	if err != nil {
		r.logger.Error("Failed to mark batch deleted", zap.String("batch_id", batchID), zap.Error(err))
		return fmt.Errorf("failed to mark batch deleted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	r.logger.Info("Batch marked deleted", zap.String("batch_id", batchID))
	return nil
}
