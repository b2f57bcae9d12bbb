// Package repository persists normalized records and import batches in
// sqlite. The service layer treats these as fallible collaborator calls
// and converts errors into structured results; nothing here panics.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
)

// RecordRepository handles challan record persistence.
type RecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *sql.DB, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger}
}

// StoreBatch inserts a batch of records under the given batch ID inside a
// single transaction and returns the inserted count.
func (r *RecordRepository) StoreBatch(records []models.NormalizedRecord, batchID string) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO challan_records (
			batch_id, order_id, customer_name, item_name, item_name_cleaned,
			category, amount, quantity, challan_date, extra_fields
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		extras, err := encodeExtras(rec.ExtraFields)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		if _, err := stmt.Exec(
			batchID,
			rec.OrderID,
			rec.CustomerName,
			rec.ItemName,
			rec.ItemNameCleaned,
			string(rec.Category),
			rec.Amount,
			rec.Quantity,
			rec.Date,
			extras,
		); err != nil {
			_ = tx.Rollback()
			r.logger.Error("Failed to insert record", zap.String("batch_id", batchID), zap.Error(err))
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	r.logger.Info("Stored record batch",
		zap.String("batch_id", batchID),
		zap.Int("inserted", inserted))
	return inserted, nil
}

// FetchAll returns every record belonging to a non-deleted batch, in
// insertion order. Used to rehydrate the in-memory dataset on startup.
func (r *RecordRepository) FetchAll() ([]models.NormalizedRecord, error) {
	rows, err := r.db.Query(`
		SELECT c.order_id, c.customer_name, c.item_name, c.item_name_cleaned,
			c.category, c.amount, c.quantity, c.challan_date, c.extra_fields
		FROM challan_records c
		JOIN import_batches b ON b.id = c.batch_id
		WHERE b.deleted = 0
		ORDER BY c.id
	`)
	if err != nil {
		r.logger.Error("Failed to fetch records", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer rows.Close()

	var records []models.NormalizedRecord
	for rows.Next() {
		var rec models.NormalizedRecord
		var category string
		var date time.Time
		var extras sql.NullString

		if err := rows.Scan(
			&rec.OrderID,
			&rec.CustomerName,
			&rec.ItemName,
			&rec.ItemNameCleaned,
			&category,
			&rec.Amount,
			&rec.Quantity,
			&date,
			&extras,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		rec.Category = models.Category(category)
		rec.Date = date
		rec.Month = date.Format("Jan 06")
		rec.Year = date.Year()
		rec.MonthNumber = int(date.Month())
		if extras.Valid && extras.String != "" {
			fields := make(map[string]string)
			if err := json.Unmarshal([]byte(extras.String), &fields); err == nil && len(fields) > 0 {
				rec.ExtraFields = fields
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteAll removes every stored record and returns the deleted count.
func (r *RecordRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM challan_records`)
	if err != nil {
		r.logger.Error("Failed to delete records", zap.Error(err))
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	r.logger.Info("Deleted all records", zap.Int64("deleted", deleted))
	return deleted, nil
}

func encodeExtras(extras map[string]string) (sql.NullString, error) {
	if len(extras) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode extra fields: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
