package sync

import (
	"syncvision/core/warehouse"
	"syncvision/feature/catalog"
)

// Resolve links an external record to at most one local catalog entry.
//
// Precedence, first hit wins: external ID, then SKU, then barcode.
// The external ID is the most durable key once established (it survives
// renames); the SKU is the human-curated fallback; the barcode comes last
// because it can be shared across package variants.
//
// Resolve is a pure function of its inputs and never mutates the index.
func Resolve(record warehouse.ProductRecord, index *catalog.Index) MatchResult {
	if record.ExternalID != "" {
		if ref, ok := index.ByExternalID[record.ExternalID]; ok {
			return MatchResult{Record: record, Local: &ref, Strategy: MatchExternalID}
		}
	}

	if record.NormalizedSKU != "" {
		if ref, ok := index.BySKU[record.NormalizedSKU]; ok {
			return MatchResult{Record: record, Local: &ref, Strategy: MatchSKU}
		}
	}

	if record.NormalizedBarcode != "" {
		if ref, ok := index.ByBarcode[record.NormalizedBarcode]; ok {
			return MatchResult{Record: record, Local: &ref, Strategy: MatchBarcode}
		}
	}

	return MatchResult{Record: record, Strategy: MatchNone}
}
