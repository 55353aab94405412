package catalog_test

import (
	"context"
	"testing"
	"time"

	"syncvision/feature/catalog"
	"syncvision/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCacheServesCachedIndex(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db, models.Product{SKU: "ab-123", ExternalID: "WH-1"})

	cache := catalog.NewIndexCache(store, time.Minute)

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Products)

	// Catalog changes are invisible until the cache is invalidated
	seedProducts(t, db, models.Product{SKU: "cd-456", ExternalID: "WH-2"})

	second, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cache.Invalidate()

	third, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Products)
}

func TestIndexCacheZeroTTLDisablesCaching(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db, models.Product{SKU: "ab-123", ExternalID: "WH-1"})

	cache := catalog.NewIndexCache(store, 0)

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	seedProducts(t, db, models.Product{SKU: "cd-456", ExternalID: "WH-2"})

	second, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, second.Products)
}

func TestIndexCacheKeyedByArchivedMode(t *testing.T) {
	store, db := setupStore(t)
	seedProducts(t, db,
		models.Product{SKU: "ab-123", ExternalID: "WH-1"},
		models.Product{SKU: "cd-456", ExternalID: "WH-2", Archived: true},
	)

	cache := catalog.NewIndexCache(store, time.Minute)

	active, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Products)

	all, err := cache.Get(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Products)
}
