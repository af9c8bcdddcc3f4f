// Package analysis computes the pipeline report: core metrics, segment
// performance, pipeline health, win and loss patterns and the ranked scores
// of open opportunities. It is a pure function of the prepared dataset and
// its fixed clock.
package analysis

import (
	"context"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/dataset"
)

// Analyzer assembles the full report.
type Analyzer struct {
	policy   Policy
	patterns *PatternAnalyzer
	scorer   *Scorer
}

// NewAnalyzer creates an analyzer with the given policy.
func NewAnalyzer(policy Policy) *Analyzer {
	return &Analyzer{
		policy:   policy,
		patterns: NewPatternAnalyzer(policy),
		scorer:   NewScorer(policy),
	}
}

// Policy returns the analyzer's policy.
func (a *Analyzer) Policy() Policy { return a.policy }

// Analyze computes every report section over ds. Envelope fields other than
// GeneratedAt and RowCount are left to the caller. The only error is ctx
// cancellation during scoring.
func (a *Analyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	opps := ds.Opportunities
	idx := segment.NewPracticeIndex(opps)

	scores, err := a.scorer.Score(ctx, opps, idx)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:            ds.Now,
		RowCount:               ds.Len(),
		Diagnostics:            []dataset.Diagnostic{},
		CoreMetrics:            ComputeCoreMetrics(opps),
		SegmentPerformance:     ComputeSegmentPerformance(opps),
		PipelineHealth:         ComputePipelineHealth(opps, ds.Now, a.policy.AgingDays),
		LossAnalysis:           a.patterns.AnalyzeLosses(opps, idx),
		WinAnalysis:            a.patterns.AnalyzeWins(opps, idx),
		ScoreOpenOpportunities: scores,
	}, nil
}
