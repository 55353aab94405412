package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"syncvision/core/logger"
	"syncvision/core/warehouse"
	"syncvision/feature/catalog"
	catalogmodels "syncvision/feature/catalog/models"
	"syncvision/feature/sync/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errorRateMinSample is the minimum number of seen records before the
// error-rate ceiling is enforced, so a bad first record cannot kill a run.
const errorRateMinSample = 50

// errAborted signals cooperative cancellation between batches.
var errAborted = errors.New("sync aborted")

// Orchestrator drives one reconciliation run end-to-end: it acquires the
// session, streams the warehouse feed, pushes batches through
// normalize/resolve/classify, accumulates verdicts into the ledger, and
// finalizes the session. It is the only component that mutates a session.
type Orchestrator struct {
	cfg     Config
	client  warehouse.Client
	store   *catalog.Store
	index   *catalog.IndexCache
	ledger  *Ledger
	archive *Archiver
	logger  *zap.Logger
}

// NewOrchestrator assembles an orchestrator. archive may be nil to disable
// report archiving.
func NewOrchestrator(cfg Config, client warehouse.Client, store *catalog.Store, index *catalog.IndexCache, ledger *Ledger, archive *Archiver, logger *zap.Logger) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	return &Orchestrator{
		cfg:     cfg,
		client:  client,
		store:   store,
		index:   index,
		ledger:  ledger,
		archive: archive,
		logger:  logger,
	}
}

// Run performs one synchronous reconciliation run. It fails fast with
// ErrSyncAlreadyRunning when another session holds the lock; in that case no
// session is created.
func (o *Orchestrator) Run(ctx context.Context) (*models.SyncSession, error) {
	session, err := o.ledger.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return o.RunSession(ctx, session)
}

// runState accumulates run-wide totals and intended write-back actions.
type runState struct {
	seen    int
	errored int

	upserts   map[uint]catalogmodels.Product
	unpublish map[uint]struct{}
}

// RunSession executes an already-created RUNNING session. Callers that need
// the session ID before the run completes (the async HTTP trigger) call
// Ledger.Begin themselves and hand the session here.
func (o *Orchestrator) RunSession(ctx context.Context, session *models.SyncSession) (*models.SyncSession, error) {
	l := logger.WithSession(o.logger, session.ID)
	l.Info("Starting sync session")

	index, err := o.index.Get(ctx, o.cfg.IncludeArchived)
	if err != nil {
		return o.fail(ctx, l, session, "catalog", fmt.Errorf("failed to build catalog index: %w", err))
	}
	l.Info("Catalog index ready", zap.Int("products", index.Products))

	ignored, err := o.store.IgnoredExternalIDs(ctx)
	if err != nil {
		return o.fail(ctx, l, session, "catalog", err)
	}

	stock, err := o.client.FetchStock(ctx)
	if err != nil {
		return o.fail(ctx, l, session, "stock", err)
	}
	stockIdx := buildStockIndex(stock)

	brands, err := o.client.FetchBrands(ctx)
	if err != nil {
		return o.fail(ctx, l, session, "brands", err)
	}
	brandNames := make(map[string]string, len(brands))
	for _, b := range brands {
		if b.ID != "" && b.Name != "" {
			brandNames[b.ID] = b.Name
		}
	}

	classifierCfg := ClassifierConfig{
		LowStockThreshold: o.cfg.LowStockThreshold,
		SKUPrefixes:       o.cfg.PrefixFilters(),
		Ignored:           ignored,
	}

	state := &runState{
		upserts:   make(map[uint]catalogmodels.Product),
		unpublish: make(map[uint]struct{}),
	}

	flush := func(batch []warehouse.RawProduct) error {
		// Cancellation is cooperative: checked at batch boundaries only,
		// so an abort never leaves a batch half-recorded.
		if ctx.Err() != nil {
			return errAborted
		}

		result := o.processBatch(ctx, l, batch, index, stockIdx, brandNames, classifierCfg, state)
		if err := o.ledger.RecordBatch(ctx, session.ID, result); err != nil {
			return fmt.Errorf("failed to record batch: %w", err)
		}

		state.seen += result.Seen
		state.errored += len(result.Errors)
		if state.seen >= errorRateMinSample && o.cfg.MaxErrorRate > 0 {
			rate := float64(state.errored) / float64(state.seen)
			if rate > o.cfg.MaxErrorRate {
				return fmt.Errorf("record error rate %.2f exceeds ceiling %.2f", rate, o.cfg.MaxErrorRate)
			}
		}
		return nil
	}

	pending := make([]warehouse.RawProduct, 0, o.cfg.BatchSize)
	err = o.client.FetchProducts(ctx, time.Time{}, func(page []warehouse.RawProduct) error {
		pending = append(pending, page...)
		for len(pending) >= o.cfg.BatchSize {
			batch := pending[:o.cfg.BatchSize:o.cfg.BatchSize]
			pending = pending[o.cfg.BatchSize:]
			if err := flush(batch); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil && len(pending) > 0 {
		err = flush(pending)
	}

	switch {
	case errors.Is(err, errAborted) || errors.Is(err, context.Canceled):
		return o.abort(ctx, l, session)
	case err != nil:
		return o.fail(ctx, l, session, "products", err)
	}

	if o.cfg.WriteBack {
		o.applyWriteBack(ctx, l, session, state)
	}

	if err := o.ledger.Finalize(ctx, session.ID, StatusSucceeded, ""); err != nil {
		return session, fmt.Errorf("failed to finalize session: %w", err)
	}

	final, err := o.ledger.Get(ctx, session.ID)
	if err != nil {
		return session, err
	}

	l.Info("Sync session succeeded",
		zap.Int("records_seen", final.RecordsSeen),
		zap.Int("records_matched", final.RecordsMatched),
		zap.Int("records_missing", final.RecordsMissing),
		zap.Int("low_stock", final.LowStockCount),
		zap.Int("missing", final.MissingCount),
		zap.Int("unpublished", final.UnpublishedCount),
		zap.Int("errors", final.ErrorCount),
	)

	o.archiveReport(ctx, l, final)

	return final, nil
}

// verdict is the pure per-record outcome produced by a worker.
type verdict struct {
	matched           bool
	resolved          bool
	quantityDefaulted bool
	recordRef         string
	discrepancies     []Discrepancy
	issue             *RecordIssue
	local             *catalog.Ref
	record            warehouse.ProductRecord
}

// processBatch runs normalize/resolve/classify for one batch on the worker
// pool, then folds the verdicts into a BatchResult on the single-writer path.
func (o *Orchestrator) processBatch(
	ctx context.Context,
	l *zap.Logger,
	batch []warehouse.RawProduct,
	index *catalog.Index,
	stockIdx map[string]int,
	brandNames map[string]string,
	classifierCfg ClassifierConfig,
	state *runState,
) BatchResult {
	verdicts := make([]verdict, len(batch))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i := range batch {
		g.Go(func() error {
			raw := batch[i]
			record, recErr := warehouse.Normalize(raw)
			if recErr != nil {
				verdicts[i] = verdict{issue: &RecordIssue{
					RecordRef: recordRef(raw.ExternalID, raw.SKU),
					Message:   recErr.Message,
				}}
				return nil
			}

			// Stock feed overrides the product feed's quantity when present.
			if qty, ok := lookupStock(stockIdx, record); ok {
				record.Quantity = qty
				record.QuantityDefaulted = false
			}
			// Brand feed resolves brand IDs to display names.
			if name, ok := brandNames[record.Brand]; ok {
				record.Brand = name
			}

			match := Resolve(record, index)
			verdicts[i] = verdict{
				matched:           match.Matched(),
				resolved:          true,
				quantityDefaulted: record.QuantityDefaulted,
				recordRef:         recordRef(record.ExternalID, record.SKU),
				discrepancies:     Classify(match, classifierCfg),
				local:             match.Local,
				record:            record,
			}
			return nil
		})
	}
	// Workers are pure and never return errors; Wait only synchronizes.
	_ = g.Wait()

	result := BatchResult{Seen: len(batch)}
	for _, v := range verdicts {
		if v.issue != nil {
			result.Missing++
			result.Errors = append(result.Errors, *v.issue)
			continue
		}
		if v.matched {
			result.Matched++
		} else {
			result.Missing++
		}
		if v.quantityDefaulted {
			l.Warn("Quantity missing in feed, defaulted to zero", zap.String("record", v.recordRef))
		}
		result.Discrepancies = append(result.Discrepancies, v.discrepancies...)

		if o.cfg.WriteBack && v.matched {
			o.collectIntents(state, v)
		}
	}

	return result
}

// collectIntents records the write-back actions implied by a matched record:
// banded quantity, brand/external-id backfill, and auto-unpublish for
// incomplete entries. Intents are keyed by local ID so re-processing is
// idempotent.
func (o *Orchestrator) collectIntents(state *runState, v verdict) {
	local := v.local
	state.upserts[local.LocalID] = catalogmodels.Product{
		ID:         local.LocalID,
		SKU:        local.SKU,
		Barcode:    local.Barcode,
		ExternalID: v.record.ExternalID,
		Name:       v.record.Name,
		Brand:      v.record.Brand,
		Quantity:   ShelfQuantity(v.record.Quantity),
		UpdatedAt:  time.Now().UTC(),
	}

	for _, d := range v.discrepancies {
		if d.Kind == KindUnpublished {
			state.unpublish[local.LocalID] = struct{}{}
		}
	}
}

// applyWriteBack issues the accumulated intents as discrete, idempotent
// store calls outside the matching path. Failures are recorded as session
// errors; they never fail a run that classified successfully.
func (o *Orchestrator) applyWriteBack(ctx context.Context, l *zap.Logger, session *models.SyncSession, state *runState) {
	if len(state.upserts) > 0 {
		records := make([]catalogmodels.Product, 0, len(state.upserts))
		for _, r := range state.upserts {
			records = append(records, r)
		}
		if err := o.store.BulkUpsert(ctx, records); err != nil {
			l.Error("Write-back upsert failed", zap.Error(err))
			_ = o.ledger.AppendError(ctx, session.ID, "write-back", err.Error())
		}
	}

	for localID := range state.unpublish {
		if err := o.store.SetPublished(ctx, localID, false); err != nil {
			l.Error("Auto-unpublish failed", zap.Uint("local_id", localID), zap.Error(err))
			_ = o.ledger.AppendError(ctx, session.ID, fmt.Sprintf("unpublish:%d", localID), err.Error())
		}
	}

	// The catalog changed; the next run must rebuild the index.
	o.index.Invalidate()
}

// archiveReport uploads the compiled report of a finalized session.
// Archive failures are logged only: the session is already terminal and its
// audit record is immutable.
func (o *Orchestrator) archiveReport(ctx context.Context, l *zap.Logger, session *models.SyncSession) {
	if o.archive == nil || !o.cfg.ArchiveReports {
		return
	}

	discrepancies, err := o.ledger.Discrepancies(ctx, session.ID)
	if err != nil {
		l.Error("Failed to load discrepancies for archive", zap.Error(err))
		return
	}

	report := Compile(session, discrepancies, o.cfg.Recipients())
	object, err := o.archive.Archive(ctx, report)
	if err != nil {
		l.Error("Failed to archive report", zap.Error(err))
		return
	}
	l.Info("Report archived", zap.String("object", object))
}

// fail finalizes the session as FAILED with the error on the audit trail.
func (o *Orchestrator) fail(ctx context.Context, l *zap.Logger, session *models.SyncSession, ref string, cause error) (*models.SyncSession, error) {
	l.Error("Sync session failed", zap.String("stage", ref), zap.Error(cause))

	// The audit trail survives cancellation of the run context.
	finalizeCtx := context.WithoutCancel(ctx)
	_ = o.ledger.AppendError(finalizeCtx, session.ID, ref, cause.Error())
	if err := o.ledger.Finalize(finalizeCtx, session.ID, StatusFailed, cause.Error()); err != nil {
		l.Error("Failed to finalize failed session", zap.Error(err))
	}

	if final, err := o.ledger.Get(finalizeCtx, session.ID); err == nil {
		session = final
	}
	o.archiveReport(finalizeCtx, l, session)
	return session, cause
}

// abort finalizes the session as ABORTED at the last completed batch boundary.
func (o *Orchestrator) abort(ctx context.Context, l *zap.Logger, session *models.SyncSession) (*models.SyncSession, error) {
	l.Warn("Sync session aborted")

	finalizeCtx := context.WithoutCancel(ctx)
	if err := o.ledger.Finalize(finalizeCtx, session.ID, StatusAborted, "cancelled by operator"); err != nil {
		l.Error("Failed to finalize aborted session", zap.Error(err))
	}

	if final, err := o.ledger.Get(finalizeCtx, session.ID); err == nil {
		session = final
	}
	o.archiveReport(finalizeCtx, l, session)
	return session, nil
}

// buildStockIndex indexes the stock feed by sanitized external ID and
// normalized SKU.
func buildStockIndex(stock []warehouse.RawStock) map[string]int {
	idx := make(map[string]int, len(stock))
	for _, s := range stock {
		qty, defaulted, err := warehouse.ParseQuantity(s.Quantity)
		if err != nil || defaulted {
			continue
		}
		if key := warehouse.SanitizeIdentifier(s.ExternalID); key != "" {
			idx["ext:"+key] = qty
		}
		if key := warehouse.NormalizeKey(s.SKU); key != "" {
			idx["sku:"+key] = qty
		}
	}
	return idx
}

func lookupStock(idx map[string]int, record warehouse.ProductRecord) (int, bool) {
	if qty, ok := idx["ext:"+record.ExternalID]; ok {
		return qty, true
	}
	if record.NormalizedSKU != "" {
		if qty, ok := idx["sku:"+record.NormalizedSKU]; ok {
			return qty, true
		}
	}
	return 0, false
}

func recordRef(externalID, sku string) string {
	if externalID != "" {
		return externalID
	}
	if sku != "" {
		return sku
	}
	return "<unidentified>"
}
