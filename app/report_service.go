package app

import (
	"context"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/excel"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/dataset"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/logging"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/metrics"
	"github.com/keatontom/salesforce-opportunity-analysis/ports"

	"github.com/google/uuid"
)

// reportNamespace seeds the name-based report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:opportunity-analysis:report"))

// ReportID derives the report ID from the uploaded bytes and the date range,
// so re-running the same upload replaces its archived report.
func ReportID(content []byte, r dataset.DateRange) string {
	name := make([]byte, 0, len(content)+1+len(r))
	name = append(name, content...)
	name = append(name, '|')
	name = append(name, string(r)...)
	return uuid.NewSHA1(reportNamespace, name).String()
}

// AnalyzeRequest is one uploaded file to analyse.
type AnalyzeRequest struct {
	Filename  string
	Content   []byte
	DateRange string
}

// ReportService runs uploads through read, prepare, filter and analyse, then
// archives and records the outcome.
type ReportService struct {
	analyzer *analysis.Analyzer
	preparer *dataset.Preparer
	store    ports.ReportStore
	logger   logging.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

// NewReportService wires the service. store and m may be nil.
func NewReportService(analyzer *analysis.Analyzer, store ports.ReportStore, logger logging.Logger, m *metrics.Metrics) *ReportService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportService{
		analyzer: analyzer,
		preparer: dataset.NewPreparer(nil),
		store:    store,
		logger:   logger.Named("report_service"),
		metrics:  m,
		clock:    time.Now,
	}
}

// WithClock replaces the source of the run's "now".
func (s *ReportService) WithClock(clock func() time.Time) *ReportService {
	s.clock = clock
	return s
}

// Prepared is a parsed, typed and date-filtered upload.
type Prepared struct {
	Dataset     *dataset.Dataset
	DateRange   dataset.DateRange
	Diagnostics []dataset.Diagnostic
	Columns     []string
}

// Prepare reads and normalizes the upload without analysing it.
func (s *ReportService) Prepare(req AnalyzeRequest) (*Prepared, error) {
	dateRange, err := dataset.ParseDateRange(req.DateRange)
	if err != nil {
		return nil, err
	}

	table, err := excel.ReadBytes(req.Filename, req.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", req.Filename)
	}

	ds, diags := s.preparer.Prepare(table, s.clock())
	ds, filterDiags := ds.Filter(dateRange)

	out := make([]dataset.Diagnostic, 0, len(diags)+len(filterDiags))
	out = append(out, diags...)
	out = append(out, filterDiags...)

	return &Prepared{Dataset: ds, DateRange: dateRange, Diagnostics: out, Columns: table.Headers}, nil
}

// Analyze produces the report for the upload. Archive failures are logged
// and do not fail the call.
func (s *ReportService) Analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Report, error) {
	start := time.Now()
	log := s.logger.With(logging.String("source", req.Filename))

	report, err := s.analyze(ctx, req)
	if err != nil {
		log.Error("analysis failed", logging.Err(err))
		s.record(metrics.StatusError, time.Since(start), 0, 0)
		return nil, err
	}

	s.archive(ctx, report)

	elapsed := time.Since(start)
	s.record(metrics.StatusOK, elapsed, report.RowCount, report.ScoreOpenOpportunities.Open())
	log.Info("report generated",
		logging.String("report_id", report.ID),
		logging.String("date_range", report.DateRange),
		logging.Int("rows", report.RowCount),
		logging.Int("diagnostics", len(report.Diagnostics)),
		logging.Duration("elapsed", elapsed),
	)
	return report, nil
}

func (s *ReportService) analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Report, error) {
	prepared, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}
	for _, d := range prepared.Diagnostics {
		if d.Severity == dataset.SeverityWarning {
			s.logger.Warn("data quality", logging.String("source", req.Filename), logging.String("column", d.Column), logging.String("detail", d.Message))
		}
	}

	report, err := s.analyzer.Analyze(ctx, prepared.Dataset)
	if err != nil {
		return nil, errors.Wrap(err, "analysis interrupted")
	}
	report.ID = ReportID(req.Content, prepared.DateRange)
	report.Source = req.Filename
	report.DateRange = string(prepared.DateRange)
	report.Diagnostics = prepared.Diagnostics
	return report, nil
}

func (s *ReportService) archive(ctx context.Context, report *analysis.Report) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, report); err != nil {
		s.logger.Error("failed to archive report", logging.String("report_id", report.ID), logging.Err(err))
		if s.metrics != nil {
			s.metrics.ArchiveFailures.Inc()
		}
	}
}

func (s *ReportService) record(status string, elapsed time.Duration, rows, scored int) {
	if s.metrics != nil {
		s.metrics.RecordReport(status, elapsed, rows, scored)
	}
}

// Get returns an archived report.
func (s *ReportService) Get(ctx context.Context, id string) (*analysis.Report, error) {
	if s.store == nil {
		return nil, errors.NotFound("report " + id)
	}
	return s.store.Get(ctx, id)
}

// List returns archived report summaries, newest first.
func (s *ReportService) List(ctx context.Context, limit int) ([]ports.ReportSummary, error) {
	if s.store == nil {
		return []ports.ReportSummary{}, nil
	}
	return s.store.List(ctx, limit)
}
