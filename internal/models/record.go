package models

import (
	"strconv"
	"time"
)

// Category is one of the fixed product categories plus the Uncategorized fallback.
type Category string

const (
	CategoryBioFertilizers        Category = "Bio-Fertilizers"
	CategoryMicronutrients        Category = "Micronutrients"
	CategoryChelatedMicronutrient Category = "Chelated Micronutrients"
	CategoryBioStimulants         Category = "Bio-Stimulants"
	CategoryOtherBulkOrders       Category = "Other Bulk Orders"
	CategoryUncategorized         Category = "Uncategorized"
)

// AllCategories returns the closed category set in display order.
func AllCategories() []Category {
	return []Category{
		CategoryBioFertilizers,
		CategoryMicronutrients,
		CategoryChelatedMicronutrient,
		CategoryBioStimulants,
		CategoryOtherBulkOrders,
		CategoryUncategorized,
	}
}

// RawRecord is a single imported row: column name to string value, as read
// from a CSV. Fields may be missing or garbled; the normalizer absorbs that.
type RawRecord map[string]string

// Column names recognized in import files. Unknown columns are preserved
// as extra fields.
const (
	ColumnChallanNumber = "Delivery Challan Number"
	ColumnChallanDate   = "Challan Date"
	ColumnCustomerName  = "Customer Name"
	ColumnItemName      = "Item Name"
	ColumnItemTotal     = "Item Total"
	ColumnQuantity      = "QuantityOrdered"
)

// NormalizedRecord is a single delivery-challan line item after parsing and
// classification. Records are never mutated after creation; filtering and
// aggregation always produce new collections.
type NormalizedRecord struct {
	OrderID         string            `json:"orderId"`
	CustomerName    string            `json:"customerName"`
	ItemName        string            `json:"itemName"`
	ItemNameCleaned string            `json:"itemNameCleaned"`
	Category        Category          `json:"category"`
	Amount          float64           `json:"amount"`
	Quantity        float64           `json:"quantity"`
	Date            time.Time         `json:"date"`
	Month           string            `json:"month"` // "Jan 06" label derived from Date
	Year            int               `json:"year"`
	MonthNumber     int               `json:"monthNumber"`
	ExtraFields     map[string]string `json:"extraFields,omitempty"`
}

// Field returns the value of a named column for export and filtering.
// Known columns map to typed fields; anything else is looked up in
// ExtraFields. Missing fields resolve to the empty string.
func (r NormalizedRecord) Field(name string) string {
	switch name {
	case ColumnChallanNumber:
		return r.OrderID
	case ColumnCustomerName:
		return r.CustomerName
	case ColumnItemName:
		return r.ItemName
	case "Category":
		return string(r.Category)
	case ColumnItemTotal:
		return strconv.FormatFloat(r.Amount, 'f', -1, 64)
	case ColumnQuantity:
		return strconv.FormatFloat(r.Quantity, 'f', -1, 64)
	case ColumnChallanDate:
		return r.Date.Format("2006-01-02")
	case "Month":
		return r.Month
	}
	return r.ExtraFields[name]
}

// ImportMode selects how an import batch is merged into the dataset.
type ImportMode string

const (
	ImportModeReplace ImportMode = "replace"
	ImportModeAppend  ImportMode = "append"
)

// Valid reports whether the mode is one of the two supported values.
func (m ImportMode) Valid() bool {
	return m == ImportModeReplace || m == ImportModeAppend
}

// BatchMeta describes one persisted import batch.
type BatchMeta struct {
	ID          string    `json:"id"`
	SourceName  string    `json:"sourceName"`
	Mode        string    `json:"mode"`
	RecordCount int       `json:"recordCount"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FileRef points at an original uploaded file retained in object storage.
type FileRef struct {
	PublicID   string    `json:"publicId"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ImportSummary reports the outcome of one import operation.
type ImportSummary struct {
	BatchID          string     `json:"batchId"`
	Mode             ImportMode `json:"mode"`
	RowsRead         int        `json:"rowsRead"`
	RecordsImported  int        `json:"recordsImported"`
	DatesSubstituted int        `json:"datesSubstituted"`
	DatasetSize      int        `json:"datasetSize"`
	FileID           string     `json:"fileId,omitempty"`
}
