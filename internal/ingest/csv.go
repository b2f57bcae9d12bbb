package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/agridash/dealer-insights/internal/models"
)

// ReadCSV parses an import file into raw records. The first row is the
// header; every later row becomes a column-name -> value mapping. Short
// rows are tolerated (missing cells simply stay absent), matching the
// forgiving-parser policy of the normalizer downstream.
func ReadCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty import file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []models.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}

		raw := make(models.RawRecord, len(header))
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			raw[col] = row[i]
		}
		records = append(records, raw)
	}
	return records, nil
}
