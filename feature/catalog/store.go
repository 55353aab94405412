package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"syncvision/core/warehouse"
	"syncvision/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ref is the read-only projection of a catalog entry the matcher works with.
// The engine never mutates a Ref; intended changes go through the explicit
// store operations.
type Ref struct {
	LocalID    uint
	SKU        string
	Barcode    string
	ExternalID string
	Published  bool
	Archived   bool
	Quantity   int
}

// Store provides the local catalog capability set: keyed lookups for the
// resolver and idempotent write-back operations for the orchestrator.
type Store struct {
	db *gorm.DB
}

// NewStore creates a catalog store on the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the catalog tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&models.Product{}, &models.IgnoreEntry{})
}

// FindByExternalID returns the catalog entry mapped to the given external ID,
// or nil when no mapping exists.
func (s *Store) FindByExternalID(ctx context.Context, externalID string) (*Ref, error) {
	if externalID == "" {
		return nil, nil
	}
	var product models.Product
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&product).Error
	return refOrNil(product, err)
}

// FindBySKU returns the catalog entry with the given SKU. The comparison is
// case-insensitive and whitespace-trimmed on both sides.
func (s *Store) FindBySKU(ctx context.Context, sku string) (*Ref, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, nil
	}
	var product models.Product
	err := s.db.WithContext(ctx).Where("UPPER(TRIM(sku)) = ?", sku).First(&product).Error
	return refOrNil(product, err)
}

// FindByBarcode returns the catalog entry with the given barcode.
func (s *Store) FindByBarcode(ctx context.Context, barcode string) (*Ref, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, nil
	}
	var product models.Product
	err := s.db.WithContext(ctx).Where("TRIM(barcode) = ?", barcode).First(&product).Error
	return refOrNil(product, err)
}

func refOrNil(product models.Product, err error) (*Ref, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	ref := toRef(product)
	return &ref, nil
}

func toRef(p models.Product) Ref {
	return Ref{
		LocalID:    p.ID,
		SKU:        p.SKU,
		Barcode:    p.Barcode,
		ExternalID: p.ExternalID,
		Published:  p.Published,
		Archived:   p.Archived,
		Quantity:   p.Quantity,
	}
}

// IgnoredExternalIDs returns the operator-maintained exclusion set for
// missing-product detection.
func (s *Store) IgnoredExternalIDs(ctx context.Context) (map[string]struct{}, error) {
	var entries []models.IgnoreEntry
	if err := s.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load ignore list: %w", err)
	}

	ignored := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		ignored[entry.ExternalID] = struct{}{}
	}
	return ignored, nil
}

// BulkUpsert inserts or updates catalog rows keyed by primary ID.
// The operation is idempotent: re-applying the same records is a no-op
// beyond the updated_at touch.
func (s *Store) BulkUpsert(ctx context.Context, records []models.Product) error {
	if len(records) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sku", "barcode", "external_id", "name", "brand", "quantity", "updated_at",
		}),
	}).CreateInBatches(records, 200).Error
	if err != nil {
		return fmt.Errorf("bulk upsert failed: %w", err)
	}
	return nil
}

// SetPublished toggles the published flag for a catalog entry. Idempotent.
func (s *Store) SetPublished(ctx context.Context, localID uint, published bool) error {
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", localID).
		Update("published", published).Error
	if err != nil {
		return fmt.Errorf("failed to set published=%v for %d: %w", published, localID, err)
	}
	return nil
}

// Index holds the in-memory lookup maps the resolver matches against.
// Keys are normalized with warehouse.NormalizeKey so the two datasets agree
// on identifier shape.
type Index struct {
	ByExternalID map[string]Ref
	BySKU        map[string]Ref
	ByBarcode    map[string]Ref

	// Products is the number of catalog entries the index was built from.
	Products int
}

// BuildIndex loads the catalog and builds the lookup index in one pass.
// When includeArchived is false, archived rows are treated as locally absent
// and excluded from every map.
func (s *Store) BuildIndex(ctx context.Context, includeArchived bool) (*Index, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("id", "sku", "barcode", "external_id", "published", "archived", "quantity")
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog index: %w", err)
	}

	index := &Index{
		ByExternalID: make(map[string]Ref, len(products)),
		BySKU:        make(map[string]Ref, len(products)),
		ByBarcode:    make(map[string]Ref, len(products)),
		Products:     len(products),
	}

	for _, p := range products {
		ref := toRef(p)
		if key := warehouse.SanitizeIdentifier(p.ExternalID); key != "" {
			index.ByExternalID[key] = ref
		}
		if key := warehouse.NormalizeKey(p.SKU); key != "" {
			index.BySKU[key] = ref
		}
		if key := warehouse.NormalizeKey(p.Barcode); key != "" {
			index.ByBarcode[key] = ref
		}
	}

	return index, nil
}
