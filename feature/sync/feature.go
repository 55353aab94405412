package sync

import (
	"time"

	"syncvision/core/storage"
	"syncvision/core/warehouse"
	"syncvision/feature/catalog"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature wires the full reconciliation stack: catalog store, index
// cache, ledger, orchestrator and service. archiveClient may be nil when
// report archiving is disabled.
func NewFeature(cfg Config, client warehouse.Client, db *gorm.DB, archiveClient storage.Client, bucket string, logger *zap.Logger) (*Feature, error) {
	store := catalog.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}

	ledger := NewLedger(db)
	if err := ledger.AutoMigrate(); err != nil {
		return nil, err
	}

	cacheTTL := time.Duration(cfg.IndexCacheTTLSeconds) * time.Second
	index := catalog.NewIndexCache(store, cacheTTL)

	var archiver *Archiver
	if archiveClient != nil {
		archiver = NewArchiver(archiveClient, bucket)
	}

	orchestrator := NewOrchestrator(cfg, client, store, index, ledger, archiver, logger)
	svc := NewService(orchestrator, ledger, cfg, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}, nil
}

// Service exposes the run lifecycle to the CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
