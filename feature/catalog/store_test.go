package catalog_test

import (
	"context"
	"testing"

	"syncvision/core/database"
	"syncvision/feature/catalog"
	"syncvision/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*catalog.Store, *gorm.DB) {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store := catalog.NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return store, db
}

func seedProducts(t *testing.T, db *gorm.DB, products ...models.Product) {
	t.Helper()
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}
}

func TestFindByExternalID(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db,
		models.Product{SKU: "AB-123", ExternalID: "WH-100", Published: true},
	)

	ref, err := store.FindByExternalID(context.Background(), "WH-100")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "AB-123", ref.SKU)

	// Absent mapping is not an error
	ref, err = store.FindByExternalID(context.Background(), "WH-999")
	require.NoError(t, err)
	assert.Nil(t, ref)

	ref, err = store.FindByExternalID(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestFindBySKUCaseInsensitive(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db, models.Product{SKU: "ab-123", Barcode: "4006381333931"})

	ref, err := store.FindBySKU(context.Background(), "  AB-123 ")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "ab-123", ref.SKU)

	ref, err = store.FindByBarcode(context.Background(), " 4006381333931 ")
	require.NoError(t, err)
	require.NotNil(t, ref)
}

func TestBuildIndexExcludesArchived(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db,
		models.Product{SKU: "ab-123", ExternalID: "WH-1", Barcode: "111"},
		models.Product{SKU: "cd-456", ExternalID: "WH-2", Archived: true},
	)

	index, err := store.BuildIndex(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, index.Products)

	// Keys are normalized
	_, ok := index.BySKU["AB123"]
	assert.True(t, ok)
	_, ok = index.ByExternalID["WH-1"]
	assert.True(t, ok)
	_, ok = index.ByExternalID["WH-2"]
	assert.False(t, ok)

	index, err = store.BuildIndex(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, index.Products)
	_, ok = index.ByExternalID["WH-2"]
	assert.True(t, ok)
}

func TestBuildIndexSkipsPlaceholderIdentifiers(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db, models.Product{SKU: "none", ExternalID: "WH-1"})

	index, err := store.BuildIndex(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, index.BySKU)
	assert.Len(t, index.ByExternalID, 1)
}

func TestBulkUpsertIdempotent(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db, models.Product{SKU: "ab-123", Quantity: 1, Published: true})

	update := []models.Product{{ID: 1, SKU: "ab-123", ExternalID: "WH-1", Quantity: 5}}
	require.NoError(t, store.BulkUpsert(context.Background(), update))
	require.NoError(t, store.BulkUpsert(context.Background(), update))

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	ref, err := store.FindByExternalID(context.Background(), "WH-1")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, 5, ref.Quantity)
	// Upsert never touches the published flag
	assert.True(t, ref.Published)
}

func TestSetPublished(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db, models.Product{SKU: "ab-123", Published: true})

	require.NoError(t, store.SetPublished(context.Background(), 1, false))
	require.NoError(t, store.SetPublished(context.Background(), 1, false))

	var product models.Product
	require.NoError(t, db.First(&product, 1).Error)
	assert.False(t, product.Published)
}

func TestIgnoredExternalIDs(t *testing.T) {
	store, db := setupStore(t)
	require.NoError(t, db.Create(&models.IgnoreEntry{ExternalID: "WH-77", Reason: "discontinued"}).Error)

	ignored, err := store.IgnoredExternalIDs(context.Background())
	require.NoError(t, err)
	_, ok := ignored["WH-77"]
	assert.True(t, ok)
	assert.Len(t, ignored, 1)
}
