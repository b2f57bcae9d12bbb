package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/agridash/dealer-insights/internal/models"
)

const exportSheet = "Records"

// ToExcel renders the records as a single-sheet xlsx workbook.
func ToExcel(records []models.NormalizedRecord, fields []string) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if len(fields) == 0 {
		fields = DefaultFields()
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, field := range fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, field); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, rec := range records {
		for col, field := range fields {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			var value interface{}
			switch field {
			case models.ColumnItemTotal:
				value = rec.Amount
			case models.ColumnQuantity:
				value = rec.Quantity
			default:
				value = rec.Field(field)
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
