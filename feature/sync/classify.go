package sync

import (
	"strings"

	"syncvision/core/warehouse"
)

// ClassifierConfig is the rule configuration the classifier evaluates against.
type ClassifierConfig struct {
	// LowStockThreshold flags quantities strictly below this value.
	// A quantity exactly equal to the threshold is not low stock.
	LowStockThreshold int
	// SKUPrefixes restricts missing detection; empty means no filter.
	SKUPrefixes []string
	// Ignored is the exclusion set for missing detection, keyed by external ID.
	Ignored map[string]struct{}
}

// Classify applies the discrepancy rules to one match result.
//
// The rules are evaluated independently, not as an if/else chain, so a single
// matched pair can yield both a low-stock and an unpublished-candidate entry.
// A matched record with adequate stock and complete identifying fields yields
// nothing.
func Classify(match MatchResult, cfg ClassifierConfig) []Discrepancy {
	var discrepancies []Discrepancy
	record := match.Record

	// Low stock: matched with warehouse quantity below the threshold.
	if match.Matched() && record.Quantity < cfg.LowStockThreshold {
		discrepancies = append(discrepancies, Discrepancy{
			Kind:       KindLowStock,
			ExternalID: record.ExternalID,
			SKU:        record.SKU,
			Barcode:    record.Barcode,
			Brand:      record.Brand,
			Quantity:   record.Quantity,
			LocalID:    match.Local.LocalID,
		})
	}

	// Missing locally: unmatched, past the prefix filter and ignore list.
	if !match.Matched() && passesPrefixFilter(record.SKU, cfg.SKUPrefixes) {
		if _, ignored := cfg.Ignored[record.ExternalID]; !ignored {
			discrepancies = append(discrepancies, Discrepancy{
				Kind:       KindMissing,
				ExternalID: record.ExternalID,
				SKU:        record.SKU,
				Barcode:    record.Barcode,
				Brand:      record.Brand,
				Quantity:   record.Quantity,
			})
		}
	}

	// Unpublished candidate: a published local entry lacking both
	// identifiers. This inspects the local fields, not the external ones;
	// the point is to flag locally-incomplete entries exposed to buyers.
	if match.Matched() && match.Local.Published {
		missing := missingLocalFields(match.Local.SKU, match.Local.Barcode)
		if len(missing) == 2 {
			discrepancies = append(discrepancies, Discrepancy{
				Kind:          KindUnpublished,
				ExternalID:    record.ExternalID,
				SKU:           record.SKU,
				Barcode:       record.Barcode,
				Brand:         record.Brand,
				Quantity:      record.Quantity,
				LocalID:       match.Local.LocalID,
				MissingFields: missing,
			})
		}
	}

	return discrepancies
}

// passesPrefixFilter reports whether the SKU passes the missing-detection
// filter. An empty filter passes everything.
func passesPrefixFilter(sku string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(sku, prefix) {
			return true
		}
	}
	return false
}

// missingLocalFields names the local identifier fields that are empty or
// placeholder values.
func missingLocalFields(sku, barcode string) []string {
	var missing []string
	if warehouse.SanitizeIdentifier(sku) == "" {
		missing = append(missing, "sku")
	}
	if warehouse.SanitizeIdentifier(barcode) == "" {
		missing = append(missing, "barcode")
	}
	return missing
}
