package sync

import "strings"

// Config holds configuration for the reconciliation engine.
type Config struct {
	// BatchSize is the number of records processed per batch.
	BatchSize int `mapstructure:"batch_size" default:"500"`
	// Workers is the size of the per-batch worker pool.
	Workers int `mapstructure:"workers" default:"4"`
	// LowStockThreshold flags matched records with a warehouse quantity
	// strictly below this value.
	LowStockThreshold int `mapstructure:"low_stock_threshold" default:"5"`
	// SKUPrefixFilter restricts missing-product detection to SKUs starting
	// with one of these comma-separated prefixes. Empty means no filter.
	SKUPrefixFilter string `mapstructure:"sku_prefix_filter" default:""`
	// EmailRecipients is the comma-separated recipient list carried on the
	// compiled report for the external mailer.
	EmailRecipients string `mapstructure:"email_recipients" default:""`
	// MaxErrorRate is the record-error ceiling; exceeding it fails the run.
	MaxErrorRate float64 `mapstructure:"max_error_rate" default:"0.25"`
	// IncludeArchived treats archived catalog rows as locally present when
	// true; when false they count as absent for missing detection.
	IncludeArchived bool `mapstructure:"include_archived" default:"false"`
	// WriteBack applies intended actions (quantity bands, auto-unpublish,
	// external ID backfill) to the catalog after classification.
	WriteBack bool `mapstructure:"write_back" default:"false"`
	// ArchiveReports uploads the compiled report of every finalized session
	// to object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"true"`
	// IndexCacheTTLSeconds is the catalog index cache TTL; zero disables
	// caching so every run sees fresh catalog data.
	IndexCacheTTLSeconds int `mapstructure:"index_cache_ttl_seconds" default:"0"`
}

// PrefixFilters parses SKUPrefixFilter into individual prefixes.
func (c Config) PrefixFilters() []string {
	var prefixes []string
	for _, p := range strings.Split(c.SKUPrefixFilter, ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// Recipients parses EmailRecipients into individual addresses.
func (c Config) Recipients() []string {
	var recipients []string
	for _, r := range strings.Split(c.EmailRecipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}
