package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/ports"

	"github.com/jmoiron/sqlx"
)

// timestampLayout is fixed width so generated_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// reportRepository implements ports.ReportStore over sqlx. Queries are
// written with ? placeholders and rebound for the connection's driver.
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportStore {
	return &reportRepository{db: db}
}

type reportRow struct {
	ID          string `db:"id"`
	Source      string `db:"source"`
	DateRange   string `db:"date_range"`
	RowCount    int    `db:"row_count"`
	GeneratedAt string `db:"generated_at"`
}

func (row reportRow) summary() (ports.ReportSummary, error) {
	at, err := time.Parse(timestampLayout, row.GeneratedAt)
	if err != nil {
		return ports.ReportSummary{}, fmt.Errorf("bad generated_at %q for report %s: %w", row.GeneratedAt, row.ID, err)
	}
	return ports.ReportSummary{
		ID:          row.ID,
		Source:      row.Source,
		DateRange:   row.DateRange,
		RowCount:    row.RowCount,
		GeneratedAt: at,
	}, nil
}

// Save upserts the report by ID
func (r *reportRepository) Save(ctx context.Context, report *analysis.Report) error {
	if report == nil || report.ID == "" {
		return errors.InvalidInput("report id is required")
	}
	body, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}

	query := r.db.Rebind(`INSERT INTO reports (id, source, date_range, row_count, generated_at, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source = excluded.source,
			date_range = excluded.date_range,
			row_count = excluded.row_count,
			generated_at = excluded.generated_at,
			body = excluded.body`)

	_, err = r.db.ExecContext(ctx, query,
		report.ID, report.Source, report.DateRange, report.RowCount,
		report.GeneratedAt.UTC().Format(timestampLayout), string(body),
	)
	if err != nil {
		return errors.DatabaseError("failed to save report", err)
	}
	return nil
}

// Get retrieves a report by its ID
func (r *reportRepository) Get(ctx context.Context, id string) (*analysis.Report, error) {
	var body string
	err := r.db.GetContext(ctx, &body, r.db.Rebind(`SELECT body FROM reports WHERE id = ?`), id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("report " + id)
		}
		return nil, errors.DatabaseError("failed to get report", err)
	}

	var report analysis.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report")
	}
	return &report, nil
}

// List returns the newest reports first
func (r *reportRepository) List(ctx context.Context, limit int) ([]ports.ReportSummary, error) {
	if limit <= 0 {
		limit = ports.DefaultListLimit
	}

	var rows []reportRow
	query := r.db.Rebind(`SELECT id, source, date_range, row_count, generated_at
		FROM reports ORDER BY generated_at DESC, id ASC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.DatabaseError("failed to list reports", err)
	}

	out := make([]ports.ReportSummary, 0, len(rows))
	for _, row := range rows {
		s, err := row.summary()
		if err != nil {
			return nil, errors.DatabaseError("failed to list reports", err)
		}
		out = append(out, s)
	}
	return out, nil
}
