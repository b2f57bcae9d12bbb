// Package export serializes a filtered record set into downloadable
// artifacts. All serializers are no-ops on an empty record set: they
// return nil bytes rather than an empty or header-only file.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/agridash/dealer-insights/internal/models"
)

// DefaultFields is the column order used when the caller does not pick one.
func DefaultFields() []string {
	return []string{
		models.ColumnChallanNumber,
		models.ColumnChallanDate,
		models.ColumnCustomerName,
		models.ColumnItemName,
		"Category",
		models.ColumnItemTotal,
		models.ColumnQuantity,
	}
}

// ToCSV renders the records as RFC 4180 CSV with a header row.
func ToCSV(records []models.NormalizedRecord, fields []string) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if len(fields) == 0 {
		fields = DefaultFields()
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(fields); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	row := make([]string, len(fields))
	for _, rec := range records {
		for i, field := range fields {
			row[i] = rec.Field(field)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
