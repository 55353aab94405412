package models

import "time"

// Product represents one entry of the locally-owned inventory catalog.
// The sync engine reads these rows for matching and only writes through the
// explicit store operations (bulk upsert, publish toggling).
type Product struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	SKU        string    `gorm:"column:sku;index"`
	Barcode    string    `gorm:"column:barcode;index"`
	ExternalID string    `gorm:"column:external_id;index"`
	Name       string    `gorm:"column:name"`
	Brand      string    `gorm:"column:brand"`
	Quantity   int       `gorm:"column:quantity"`
	Published  bool      `gorm:"column:published"`
	Archived   bool      `gorm:"column:archived"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name for catalog products.
func (Product) TableName() string {
	return "catalog_products"
}

// IgnoreEntry is an operator-maintained exclusion: external IDs listed here
// are never reported as missing. The engine consults this set but never
// mutates it.
type IgnoreEntry struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID string    `gorm:"column:external_id;uniqueIndex"`
	Reason     string    `gorm:"column:reason"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name for the ignore list.
func (IgnoreEntry) TableName() string {
	return "sync_ignore_list"
}
