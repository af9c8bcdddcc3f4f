// Package memory holds the in-process report archive used when no database
// is configured.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/ports"
)

type entry struct {
	summary ports.ReportSummary
	body    []byte
}

// ReportStore keeps serialized reports in a map. Reports are stored as JSON
// so callers never share mutable state with the archive.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]entry
}

// NewReportStore creates an empty store
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]entry)}
}

var _ ports.ReportStore = (*ReportStore)(nil)

// Save inserts or replaces the report
func (s *ReportStore) Save(ctx context.Context, r *analysis.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil || r.ID == "" {
		return errors.InvalidInput("report id is required")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = entry{summary: ports.SummaryOf(r), body: body}
	return nil
}

// Get returns a copy of the stored report
func (s *ReportStore) Get(ctx context.Context, id string) (*analysis.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("report " + id)
	}

	var r analysis.Report
	if err := json.Unmarshal(e.body, &r); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report")
	}
	return &r, nil
}

// List returns summaries newest first, ties broken by ID
func (s *ReportStore) List(ctx context.Context, limit int) ([]ports.ReportSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = ports.DefaultListLimit
	}

	s.mu.RLock()
	out := make([]ports.ReportSummary, 0, len(s.reports))
	for _, e := range s.reports {
		out = append(out, e.summary)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
