package sync_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"syncvision/core/database"
	"syncvision/core/warehouse"
	"syncvision/feature/catalog"
	catalogmodels "syncvision/feature/catalog/models"
	"syncvision/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeWarehouse is an in-memory warehouse.Client for orchestrator tests.
type fakeWarehouse struct {
	pages       [][]warehouse.RawProduct
	stock       []warehouse.RawStock
	brands      []warehouse.RawBrand
	productsErr error
	stockErr    error

	// afterPage runs after each delivered page, for cancellation tests.
	afterPage func(page int)
}

func (f *fakeWarehouse) FetchProducts(ctx context.Context, since time.Time, fn func([]warehouse.RawProduct) error) error {
	if f.productsErr != nil {
		return f.productsErr
	}
	for i, page := range f.pages {
		if err := fn(page); err != nil {
			return err
		}
		if f.afterPage != nil {
			f.afterPage(i)
		}
	}
	return nil
}

func (f *fakeWarehouse) FetchProduct(ctx context.Context, id string) (*warehouse.RawProduct, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeWarehouse) FetchStock(ctx context.Context) ([]warehouse.RawStock, error) {
	return f.stock, f.stockErr
}

func (f *fakeWarehouse) FetchBrands(ctx context.Context) ([]warehouse.RawBrand, error) {
	return f.brands, nil
}

func rawProduct(externalID, sku string, qty int) warehouse.RawProduct {
	return warehouse.RawProduct{
		ExternalID: externalID,
		SKU:        sku,
		Quantity:   json.RawMessage(strconv.Itoa(qty)),
	}
}

type orchestratorEnv struct {
	db       *gorm.DB
	store    *catalog.Store
	ledger   *sync.Ledger
	client *fakeWarehouse
}

func setupOrchestrator(t *testing.T, cfg sync.Config, client *fakeWarehouse) (*sync.Orchestrator, *orchestratorEnv) {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store := catalog.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	ledger := sync.NewLedger(db)
	require.NoError(t, ledger.AutoMigrate())

	index := catalog.NewIndexCache(store, 0)
	orch := sync.NewOrchestrator(cfg, client, store, index, ledger, nil, zap.NewNop())

	return orch, &orchestratorEnv{db: db, store: store, ledger: ledger, client: client}
}

func seedCatalog(t *testing.T, db *gorm.DB, products ...catalogmodels.Product) {
	t.Helper()
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}
}

func TestRunCompleteness(t *testing.T) {
	client := &fakeWarehouse{
		pages: [][]warehouse.RawProduct{
			{
				rawProduct("WH-1", "ab-1", 100),
				rawProduct("WH-2", "ab-2", 2),
			},
			{
				rawProduct("WH-3", "zz-3", 50),
				{ExternalID: "WH-4", SKU: "ab-4", Quantity: json.RawMessage(`-1`)},
				rawProduct("WH-5", "ab-5", 100),
			},
		},
	}

	cfg := sync.Config{BatchSize: 2, Workers: 2, LowStockThreshold: 5}
	orch, env := setupOrchestrator(t, cfg, client)
	seedCatalog(t, env.db,
		catalogmodels.Product{SKU: "ab-1", ExternalID: "WH-1", Barcode: "111", Published: true},
		catalogmodels.Product{SKU: "ab-2", ExternalID: "WH-2", Barcode: "222", Published: true},
		catalogmodels.Product{SKU: "ab-5", Barcode: "555", Published: true},
	)

	session, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, string(sync.StatusSucceeded), session.Status)
	// Every fetched record is accounted for, including the one that failed
	// normalization.
	assert.Equal(t, 5, session.RecordsSeen)
	assert.Equal(t, 3, session.RecordsMatched)
	assert.Equal(t, 2, session.RecordsMissing)
	assert.Equal(t, session.RecordsSeen, session.RecordsMatched+session.RecordsMissing)
	assert.Equal(t, 1, session.ErrorCount)
	assert.Equal(t, 1, session.LowStockCount)
	assert.Equal(t, 1, session.MissingCount)
	require.NotNil(t, session.FinishedAt)

	rows, err := env.ledger.Discrepancies(context.Background(), session.ID)
	require.NoError(t, err)
	kinds := map[string]string{}
	for _, row := range rows {
		kinds[row.Kind] = row.ExternalID
	}
	assert.Equal(t, "WH-2", kinds[string(sync.KindLowStock)])
	assert.Equal(t, "WH-3", kinds[string(sync.KindMissing)])

	errRows, err := env.ledger.Errors(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, errRows, 1)
	assert.Equal(t, "WH-4", errRows[0].RecordRef)
}

func TestRunExclusivity(t *testing.T) {
	orch, env := setupOrchestrator(t, sync.Config{}, &fakeWarehouse{})

	running, err := env.ledger.Begin(context.Background())
	require.NoError(t, err)

	_, err = orch.Run(context.Background())
	assert.ErrorIs(t, err, sync.ErrSyncAlreadyRunning)

	// The blocked trigger created no session
	sessions, err := env.ledger.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, running.ID, sessions[0].ID)
}

func TestRunPermanentFetchFailure(t *testing.T) {
	client := &fakeWarehouse{
		productsErr: fmt.Errorf("auth rejected with status 401: %w", warehouse.ErrPermanent),
	}
	orch, env := setupOrchestrator(t, sync.Config{}, client)

	session, err := orch.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, session)
	assert.Equal(t, string(sync.StatusFailed), session.Status)
	assert.NotEmpty(t, session.Note)

	errRows, err := env.ledger.Errors(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, errRows)
	assert.Contains(t, errRows[0].Message, "auth rejected")
}

func TestRunStockFeedFailure(t *testing.T) {
	client := &fakeWarehouse{stockErr: errors.New("stock feed down")}
	orch, _ := setupOrchestrator(t, sync.Config{}, client)

	session, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, string(sync.StatusFailed), session.Status)
}

func TestRunAbortAtBatchBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeWarehouse{
		pages: [][]warehouse.RawProduct{
			{rawProduct("WH-1", "ab-1", 100), rawProduct("WH-2", "ab-2", 100)},
			{rawProduct("WH-3", "ab-3", 100), rawProduct("WH-4", "ab-4", 100)},
		},
	}
	client.afterPage = func(page int) {
		if page == 0 {
			cancel()
		}
	}

	cfg := sync.Config{BatchSize: 2}
	orch, _ := setupOrchestrator(t, cfg, client)

	session, err := orch.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(sync.StatusAborted), session.Status)

	// The first batch completed before the abort; the second never ran
	assert.Equal(t, 2, session.RecordsSeen)
	require.NotNil(t, session.FinishedAt)
}

func TestRunErrorRateCeiling(t *testing.T) {
	var page []warehouse.RawProduct
	for i := 0; i < 60; i++ {
		if i%2 == 0 {
			// Invalid quantity fails normalization
			page = append(page, warehouse.RawProduct{
				ExternalID: fmt.Sprintf("WH-%d", i),
				SKU:        fmt.Sprintf("ab-%d", i),
				Quantity:   json.RawMessage(`"broken"`),
			})
			continue
		}
		page = append(page, rawProduct(fmt.Sprintf("WH-%d", i), fmt.Sprintf("ab-%d", i), 100))
	}

	client := &fakeWarehouse{pages: [][]warehouse.RawProduct{page}}
	cfg := sync.Config{MaxErrorRate: 0.25}
	orch, _ := setupOrchestrator(t, cfg, client)

	session, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error rate")
	assert.Equal(t, string(sync.StatusFailed), session.Status)
}

func TestRunWriteBack(t *testing.T) {
	client := &fakeWarehouse{
		pages: [][]warehouse.RawProduct{{
			rawProduct("WH-1", "ab-1", 250),
			rawProduct("WH-2", "ab-2", 40),
		}},
	}

	cfg := sync.Config{LowStockThreshold: 5, WriteBack: true}
	orch, env := setupOrchestrator(t, cfg, client)
	seedCatalog(t, env.db,
		// Matched by SKU; gets the external ID backfilled
		catalogmodels.Product{SKU: "ab-1", Barcode: "111", Published: true, Quantity: 1},
		// Published with placeholder identifiers; matched by external ID
		catalogmodels.Product{SKU: "none", Barcode: "", ExternalID: "WH-2", Published: true},
	)

	session, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, string(sync.StatusSucceeded), session.Status)
	assert.Equal(t, 1, session.UnpublishedCount)

	var first catalogmodels.Product
	require.NoError(t, env.db.First(&first, 1).Error)
	assert.Equal(t, "WH-1", first.ExternalID)
	// 250 maps to the top shelf band
	assert.Equal(t, 10, first.Quantity)
	assert.True(t, first.Published)

	var second catalogmodels.Product
	require.NoError(t, env.db.First(&second, 2).Error)
	assert.False(t, second.Published)
	// 40 maps to the middle band
	assert.Equal(t, 2, second.Quantity)
}

func TestRunStockFeedOverridesQuantity(t *testing.T) {
	client := &fakeWarehouse{
		pages: [][]warehouse.RawProduct{{rawProduct("WH-1", "ab-1", 100)}},
		stock: []warehouse.RawStock{
			{ExternalID: "WH-1", Quantity: json.RawMessage(`2`)},
		},
	}

	cfg := sync.Config{LowStockThreshold: 5}
	orch, env := setupOrchestrator(t, cfg, client)
	seedCatalog(t, env.db,
		catalogmodels.Product{SKU: "ab-1", ExternalID: "WH-1", Barcode: "111", Published: true},
	)

	session, err := orch.Run(context.Background())
	require.NoError(t, err)

	// The stock feed's quantity wins over the product feed's
	assert.Equal(t, 1, session.LowStockCount)

	rows, err := env.ledger.Discrepancies(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Quantity)
}

func TestRunIdempotentReruns(t *testing.T) {
	client := &fakeWarehouse{
		pages: [][]warehouse.RawProduct{{rawProduct("WH-1", "zz-1", 100)}},
	}
	orch, env := setupOrchestrator(t, sync.Config{}, client)

	first, err := orch.Run(context.Background())
	require.NoError(t, err)
	second, err := orch.Run(context.Background())
	require.NoError(t, err)

	// Same input, same verdicts; only the session identity differs
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.RecordsSeen, second.RecordsSeen)
	assert.Equal(t, first.MissingCount, second.MissingCount)

	sessions, err := env.ledger.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
