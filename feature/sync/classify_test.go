package sync_test

import (
	"testing"

	"syncvision/core/warehouse"
	"syncvision/feature/catalog"
	"syncvision/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matched(record warehouse.ProductRecord, local catalog.Ref) sync.MatchResult {
	return sync.MatchResult{Record: record, Local: &local, Strategy: sync.MatchExternalID}
}

func unmatched(record warehouse.ProductRecord) sync.MatchResult {
	return sync.MatchResult{Record: record, Strategy: sync.MatchNone}
}

func TestClassifyLowStockBoundary(t *testing.T) {
	cfg := sync.ClassifierConfig{LowStockThreshold: 5}
	local := catalog.Ref{LocalID: 1, SKU: "ab-123", Barcode: "111"}

	// Exactly at the threshold is not low stock
	rec := record("WH-1", "ab-123", "")
	rec.Quantity = 5
	assert.Empty(t, sync.Classify(matched(rec, local), cfg))

	rec.Quantity = 4
	ds := sync.Classify(matched(rec, local), cfg)
	require.Len(t, ds, 1)
	assert.Equal(t, sync.KindLowStock, ds[0].Kind)
	assert.Equal(t, 4, ds[0].Quantity)
	assert.EqualValues(t, 1, ds[0].LocalID)
}

func TestClassifyLowStockRequiresMatch(t *testing.T) {
	cfg := sync.ClassifierConfig{LowStockThreshold: 5}

	rec := record("WH-1", "ab-123", "")
	rec.Quantity = 0
	ds := sync.Classify(unmatched(rec), cfg)

	// Zero quantity on an unmatched record is missing, never low stock
	require.Len(t, ds, 1)
	assert.Equal(t, sync.KindMissing, ds[0].Kind)
}

func TestClassifyMissing(t *testing.T) {
	cfg := sync.ClassifierConfig{LowStockThreshold: 5}

	rec := record("WH-1", "ab-123", "")
	rec.Quantity = 100
	ds := sync.Classify(unmatched(rec), cfg)

	require.Len(t, ds, 1)
	assert.Equal(t, sync.KindMissing, ds[0].Kind)
	assert.Equal(t, "WH-1", ds[0].ExternalID)
	assert.Zero(t, ds[0].LocalID)
}

func TestClassifyMissingPrefixFilter(t *testing.T) {
	cfg := sync.ClassifierConfig{
		LowStockThreshold: 5,
		SKUPrefixes:       []string{"AB-", "CD-"},
	}

	rec := record("WH-1", "AB-123", "")
	rec.Quantity = 10
	assert.Len(t, sync.Classify(unmatched(rec), cfg), 1)

	rec = record("WH-2", "ZZ-999", "")
	rec.Quantity = 10
	assert.Empty(t, sync.Classify(unmatched(rec), cfg))
}

func TestClassifyMissingIgnoreList(t *testing.T) {
	cfg := sync.ClassifierConfig{
		LowStockThreshold: 5,
		Ignored:           map[string]struct{}{"WH-77": {}},
	}

	rec := record("WH-77", "ab-123", "")
	rec.Quantity = 10
	assert.Empty(t, sync.Classify(unmatched(rec), cfg))
}

func TestClassifyUnpublishedCandidate(t *testing.T) {
	cfg := sync.ClassifierConfig{LowStockThreshold: 5}
	rec := record("WH-1", "ab-123", "")
	rec.Quantity = 100

	// Both local identifiers empty or placeholders: flagged
	local := catalog.Ref{LocalID: 1, SKU: "none", Barcode: " ", Published: true}
	ds := sync.Classify(matched(rec, local), cfg)
	require.Len(t, ds, 1)
	assert.Equal(t, sync.KindUnpublished, ds[0].Kind)
	assert.ElementsMatch(t, []string{"sku", "barcode"}, ds[0].MissingFields)

	// One identifier present: not flagged
	local = catalog.Ref{LocalID: 1, SKU: "ab-123", Barcode: "", Published: true}
	assert.Empty(t, sync.Classify(matched(rec, local), cfg))

	// Already unpublished: not flagged again
	local = catalog.Ref{LocalID: 1, SKU: "", Barcode: "", Published: false}
	assert.Empty(t, sync.Classify(matched(rec, local), cfg))
}

func TestClassifyRulesAreIndependent(t *testing.T) {
	cfg := sync.ClassifierConfig{LowStockThreshold: 5}

	// Low stock and unpublished candidate on the same pair
	rec := record("WH-1", "ab-123", "")
	rec.Quantity = 1
	local := catalog.Ref{LocalID: 1, SKU: "", Barcode: "", Published: true}

	ds := sync.Classify(matched(rec, local), cfg)
	require.Len(t, ds, 2)

	kinds := []sync.DiscrepancyKind{ds[0].Kind, ds[1].Kind}
	assert.Contains(t, kinds, sync.KindLowStock)
	assert.Contains(t, kinds, sync.KindUnpublished)
}

func TestClassifyHealthyPairYieldsNothing(t *testing.T) {
	cfg := sync.ClassifierConfig{LowStockThreshold: 5}

	rec := record("WH-1", "ab-123", "111")
	rec.Quantity = 100
	local := catalog.Ref{LocalID: 1, SKU: "ab-123", Barcode: "111", Published: true}

	assert.Empty(t, sync.Classify(matched(rec, local), cfg))
}
