package warehouse

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawProduct is a product entry exactly as reported by the warehouse API.
// Quantity and Price are kept raw so the normalizer can reject malformed
// values per record instead of failing the whole page decode.
type RawProduct struct {
	ExternalID  string          `json:"external_id"`
	SKU         string          `json:"sku"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Quantity    json.RawMessage `json:"quantity"`
	Price       json.RawMessage `json:"price"`
	LastUpdated string          `json:"last_updated"`
}

// RawStock is a stock-level entry from the warehouse API, keyed by
// external ID or SKU.
type RawStock struct {
	ExternalID string          `json:"external_id"`
	SKU        string          `json:"sku"`
	Quantity   json.RawMessage `json:"quantity"`
}

// RawBrand is a brand entry from the warehouse API.
type RawBrand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductRecord is the canonical, validated form of a warehouse product.
// It is produced fresh each run and immutable within a run.
type ProductRecord struct {
	ExternalID  string
	SKU         string
	Barcode     string
	Name        string
	Brand       string
	Quantity    int
	Price       float64
	LastUpdated time.Time

	// QuantityDefaulted marks records whose quantity field was absent and
	// defaulted to zero; the orchestrator logs these as data-quality warnings.
	QuantityDefaulted bool

	// NormalizedSKU and NormalizedBarcode are the lookup keys: alphanumerics
	// only, uppercased. Empty when the source field is empty or a placeholder.
	NormalizedSKU     string
	NormalizedBarcode string
}

// RecordError describes a single record that failed normalization.
// It never aborts the batch; the run records it and continues.
type RecordError struct {
	ExternalID string
	SKU        string
	Message    string
}

func (e *RecordError) Error() string {
	ref := e.ExternalID
	if ref == "" {
		ref = e.SKU
	}
	if ref == "" {
		ref = "<unidentified>"
	}
	return fmt.Sprintf("record %s: %s", ref, e.Message)
}
