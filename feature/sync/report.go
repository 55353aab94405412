package sync

import (
	"sort"
	"time"

	"syncvision/feature/sync/models"
)

// ReportLine is one product entry in a report section.
type ReportLine struct {
	ExternalID    string `json:"external_id"`
	SKU           string `json:"sku"`
	Barcode       string `json:"barcode,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Quantity      int    `json:"quantity"`
	LocalID       uint   `json:"local_id,omitempty"`
	MissingFields string `json:"missing_fields,omitempty"`
}

// ReportSummary is the derived, read-only view of a finalized session.
// It has no lifecycle of its own: it is reconstructible from the session and
// its discrepancies at any time, which is what makes golden-output testing
// of Compile possible.
type ReportSummary struct {
	SessionID  string        `json:"session_id"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration_ns"`

	RecordsSeen    int `json:"records_seen"`
	RecordsMatched int `json:"records_matched"`
	RecordsMissing int `json:"records_missing"`
	ErrorCount     int `json:"error_count"`

	LowStockCount    int `json:"low_stock_count"`
	MissingCount     int `json:"missing_count"`
	UnpublishedCount int `json:"unpublished_count"`

	LowStock    []ReportLine `json:"low_stock"`
	Missing     []ReportLine `json:"missing"`
	Unpublished []ReportLine `json:"unpublished"`

	// Recipients is carried for the external mailer; the engine never
	// renders or sends anything itself.
	Recipients []string `json:"recipients,omitempty"`

	Note string `json:"note,omitempty"`
}

// Compile aggregates a session and its discrepancy rows into a ReportSummary.
// Deterministic given its inputs: sections are sorted by external ID, then SKU.
func Compile(session *models.SyncSession, discrepancies []models.SyncDiscrepancy, recipients []string) ReportSummary {
	report := ReportSummary{
		SessionID:        session.ID,
		Status:           session.Status,
		StartedAt:        session.StartedAt,
		FinishedAt:       session.FinishedAt,
		RecordsSeen:      session.RecordsSeen,
		RecordsMatched:   session.RecordsMatched,
		RecordsMissing:   session.RecordsMissing,
		ErrorCount:       session.ErrorCount,
		LowStockCount:    session.LowStockCount,
		MissingCount:     session.MissingCount,
		UnpublishedCount: session.UnpublishedCount,
		LowStock:         []ReportLine{},
		Missing:          []ReportLine{},
		Unpublished:      []ReportLine{},
		Recipients:       recipients,
		Note:             session.Note,
	}

	if session.FinishedAt != nil {
		report.Duration = session.FinishedAt.Sub(session.StartedAt)
	}

	for _, d := range discrepancies {
		line := ReportLine{
			ExternalID:    d.ExternalID,
			SKU:           d.SKU,
			Barcode:       d.Barcode,
			Brand:         d.Brand,
			Quantity:      d.Quantity,
			LocalID:       d.LocalID,
			MissingFields: d.MissingFields,
		}
		switch DiscrepancyKind(d.Kind) {
		case KindLowStock:
			report.LowStock = append(report.LowStock, line)
		case KindMissing:
			report.Missing = append(report.Missing, line)
		case KindUnpublished:
			report.Unpublished = append(report.Unpublished, line)
		}
	}

	sortLines(report.LowStock)
	sortLines(report.Missing)
	sortLines(report.Unpublished)

	return report
}

func sortLines(lines []ReportLine) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ExternalID != lines[j].ExternalID {
			return lines[i].ExternalID < lines[j].ExternalID
		}
		return lines[i].SKU < lines[j].SKU
	})
}
