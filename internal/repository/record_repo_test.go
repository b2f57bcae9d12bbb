package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
	"github.com/agridash/dealer-insights/pkg/database"
)

const testSchema = `
CREATE TABLE import_batches (
    id TEXT PRIMARY KEY,
    source_name TEXT NOT NULL,
    mode TEXT NOT NULL,
    record_count INTEGER NOT NULL DEFAULT 0,
    deleted INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE challan_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL REFERENCES import_batches(id),
    order_id TEXT NOT NULL,
    customer_name TEXT NOT NULL,
    item_name TEXT NOT NULL,
    item_name_cleaned TEXT NOT NULL,
    category TEXT NOT NULL,
    amount REAL NOT NULL DEFAULT 0,
    quantity REAL NOT NULL DEFAULT 0,
    challan_date DATETIME NOT NULL,
    extra_fields TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

func newRepos(t *testing.T) (*RecordRepository, *BatchRepository) {
	logger, _ := zap.NewDevelopment()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "repo.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return NewRecordRepository(db.DB, logger), NewBatchRepository(db.DB, logger)
}

func testRecord(order, customer string, amount float64) models.NormalizedRecord {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return models.NormalizedRecord{
		OrderID:         order,
		CustomerName:    customer,
		ItemName:        "Sanjivani 5kg",
		ItemNameCleaned: "sanjivani 5kg",
		Category:        models.CategoryBioFertilizers,
		Amount:          amount,
		Quantity:        2,
		Date:            date,
		Month:           "Mar 24",
		Year:            2024,
		MonthNumber:     3,
	}
}

func TestStoreBatchAndFetchAll(t *testing.T) {
	records, batches := newRepos(t)

	require.NoError(t, batches.Create(models.BatchMeta{ID: "b1", SourceName: "a.csv", Mode: "replace", RecordCount: 2}))

	in := []models.NormalizedRecord{
		testRecord("DC-1", "Agro Traders", 1500),
		testRecord("DC-2", "Kisan Kendra", 800),
	}
	in[1].ExtraFields = map[string]string{"Region": "West"}

	inserted, err := records.StoreBatch(in, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	out, err := records.FetchAll()
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "DC-1", out[0].OrderID)
	assert.Equal(t, "Agro Traders", out[0].CustomerName)
	assert.Equal(t, models.CategoryBioFertilizers, out[0].Category)
	assert.Equal(t, 1500.0, out[0].Amount)
	assert.Equal(t, "Mar 24", out[0].Month, "month label is rederived from the date")
	assert.Equal(t, 3, out[0].MonthNumber)
	assert.Equal(t, map[string]string{"Region": "West"}, out[1].ExtraFields)
}

func TestFetchAllSkipsDeletedBatches(t *testing.T) {
	records, batches := newRepos(t)

	require.NoError(t, batches.Create(models.BatchMeta{ID: "b1", SourceName: "a.csv", Mode: "replace"}))
	require.NoError(t, batches.Create(models.BatchMeta{ID: "b2", SourceName: "b.csv", Mode: "append"}))

	_, err := records.StoreBatch([]models.NormalizedRecord{testRecord("DC-1", "A", 10)}, "b1")
	require.NoError(t, err)
	_, err = records.StoreBatch([]models.NormalizedRecord{testRecord("DC-2", "B", 20)}, "b2")
	require.NoError(t, err)

	require.NoError(t, batches.MarkDeleted("b1"))

	out, err := records.FetchAll()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "DC-2", out[0].OrderID)

	active, err := batches.List(false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b2", active[0].ID)

	all, err := batches.List(true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkDeletedUnknownBatch(t *testing.T) {
	_, batches := newRepos(t)
	assert.ErrorIs(t, batches.MarkDeleted("nope"), sql.ErrNoRows)
}

func TestDeleteAll(t *testing.T) {
	records, batches := newRepos(t)

	require.NoError(t, batches.Create(models.BatchMeta{ID: "b1", SourceName: "a.csv", Mode: "replace"}))
	_, err := records.StoreBatch([]models.NormalizedRecord{
		testRecord("DC-1", "A", 10),
		testRecord("DC-2", "B", 20),
	}, "b1")
	require.NoError(t, err)

	deleted, err := records.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	out, err := records.FetchAll()
	require.NoError(t, err)
	assert.Empty(t, out)
}
