package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PrintFormat is the label layout configuration chosen for a print run.
// It is persisted verbatim with the job so a reprint can reproduce the run
// even after the available formats change.
type PrintFormat struct {
	Name        string `json:"name"`
	PaperSize   string `json:"paper_size,omitempty"`
	Columns     int    `json:"columns,omitempty"`
	ShowWeight  bool   `json:"show_weight,omitempty"`
	ShowEncoded bool   `json:"show_encoded,omitempty"`
}

// Snapshot serializes the format for storage with a job.
func (f PrintFormat) Snapshot() string {
	b, _ := json.Marshal(f)
	return string(b)
}

// PrintJob is one batch label-printing action. Jobs are append-only: they are
// created in a single transaction with their lines and never updated. The
// only deletion path is orphan reconciliation, when the owning user record
// has been removed.
type PrintJob struct {
	ID             string    `json:"id"`
	OwnerUserID    string    `json:"owner_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	FormatSnapshot string    `json:"format_snapshot"`
	TotalItems     int       `json:"total_items"`
}

// PrintJobLine is one label within a job. The stored price fields are the
// record of truth for reprints: they are written once at job creation and
// never derived from the live inventory row again.
type PrintJobLine struct {
	ID            int64           `json:"id"`
	JobID         string          `json:"job_id"`
	SKU           string          `json:"sku"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	EncodedString string          `json:"encoded_string"`
	ChecksumDigit int             `json:"checksum_digit"`
	Method        string          `json:"method"`
	Version       int             `json:"version"`
}

// LabelLine is a render-ready label handed to the PDF/layout collaborator.
// Display fields come from the live inventory row; price fields come from
// the job line and are frozen at job-creation time.
type LabelLine struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Shape         string          `json:"shape,omitempty"`
	StockLocation string          `json:"stock_location,omitempty"`
	WeightValue   decimal.Decimal `json:"weight_value"`
	WeightUnit    string          `json:"weight_unit"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	EncodedString string          `json:"encoded_string"`
	ChecksumDigit int             `json:"checksum_digit"`
}

// PrintJobResult is returned from job creation for immediate rendering.
// Only the job and its lines are persisted; the denormalized label lines are
// rebuilt on demand by the reprint resolver.
type PrintJobResult struct {
	JobID   string      `json:"job_id"`
	Lines   []LabelLine `json:"lines"`
	Skipped []int64     `json:"skipped_ids,omitempty"`
}
