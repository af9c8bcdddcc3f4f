package ports

import (
	"context"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// ReportSummary is the archive listing entry for one report.
type ReportSummary struct {
	ID          string    `json:"id" db:"id"`
	Source      string    `json:"source" db:"source"`
	DateRange   string    `json:"date_range" db:"date_range"`
	RowCount    int       `json:"row_count" db:"row_count"`
	GeneratedAt time.Time `json:"generated_at" db:"-"`
}

// SummaryOf extracts the listing fields of a report.
func SummaryOf(r *analysis.Report) ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		Source:      r.Source,
		DateRange:   r.DateRange,
		RowCount:    r.RowCount,
		GeneratedAt: r.GeneratedAt,
	}
}

// ReportStore archives finished reports
type ReportStore interface {
	// Save inserts the report or replaces the one with the same ID.
	Save(ctx context.Context, r *analysis.Report) error
	// Get returns a NOT_FOUND AppError for unknown IDs.
	Get(ctx context.Context, id string) (*analysis.Report, error)
	// List returns the newest reports first.
	List(ctx context.Context, limit int) ([]ReportSummary, error)
}
