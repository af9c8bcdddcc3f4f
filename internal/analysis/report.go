package analysis

import (
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/dataset"
)

// Report is the full analytical output for one prepared dataset.
type Report struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Source      string               `json:"source"`
	DateRange   string               `json:"date_range"`
	RowCount    int                  `json:"row_count"`
	Diagnostics []dataset.Diagnostic `json:"diagnostics"`

	CoreMetrics            CoreMetrics        `json:"Core Metrics"`
	SegmentPerformance     SegmentPerformance `json:"Segment Performance"`
	PipelineHealth         PipelineHealth     `json:"Pipeline Health"`
	LossAnalysis           LossAnalysis       `json:"Loss Analysis"`
	WinAnalysis            WinAnalysis        `json:"Win Analysis"`
	ScoreOpenOpportunities ScoreResult        `json:"Score Open Opportunities"`
}

// CoreMetrics summarizes the whole dataset.
type CoreMetrics struct {
	TotalVolume           float64 `json:"Total Volume"`
	AverageDealSize       float64 `json:"Average Deal Size"`
	WinRate               float64 `json:"Win Rate"`
	AverageTimeToClose    float64 `json:"Average Time to Close"`
	NumberOfOpportunities int     `json:"Number of Opportunities"`
}

// SegmentPerformance breaks volume and win rate down by account, type and practice area.
type SegmentPerformance struct {
	AccountPerformance      []AccountPerformance      `json:"Account Performance"`
	TypePerformance         []TypePerformance         `json:"Type Performance"`
	PracticeAreaPerformance []PracticeAreaPerformance `json:"Practice Area Performance"`
}

// AccountPerformance is one account's rollup.
type AccountPerformance struct {
	AccountName string  `json:"Account Name"`
	TotalVolume float64 `json:"Total Volume"`
	AvgDealSize float64 `json:"Avg Deal Size"`
	WinRate     float64 `json:"Win Rate"`
}

// TypePerformance is one opportunity type's rollup and its members.
type TypePerformance struct {
	Type          string           `json:"Type"`
	TotalVolume   float64          `json:"Total Volume"`
	AvgDealSize   float64          `json:"Avg Deal Size"`
	WinRate       float64          `json:"Win Rate"`
	Opportunities []OpportunityRef `json:"opportunities"`
}

// OpportunityRef is the compact listing of one opportunity.
type OpportunityRef struct {
	AccountName     string  `json:"Account Name"`
	OpportunityName string  `json:"Opportunity Name"`
	TotalACV        float64 `json:"Total ACV"`
	CreatedDate     string  `json:"Created Date"`
	Type            string  `json:"Type"`
}

// PracticeAreaPerformance is one exploded practice-area token's rollup.
type PracticeAreaPerformance struct {
	PracticeArea string  `json:"Practice Area"`
	TotalVolume  float64 `json:"Total Volume"`
	AvgDealSize  float64 `json:"Avg Deal Size"`
	WinRate      float64 `json:"Win Rate"`
}

// PipelineHealth describes stage mix, loss reasons and stale open deals.
type PipelineHealth struct {
	StageDistribution  map[string]StageShare `json:"Stage Distribution"`
	LostReasons        map[string]int        `json:"Lost Reasons"`
	AgingOpportunities Aging                 `json:"Aging Opportunities"`
}

// StageShare is a stage's share of all rows; Percentage is a fraction in [0,1].
type StageShare struct {
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// Aging lists open opportunities older than the policy's aging threshold.
type Aging struct {
	Count      int           `json:"Count"`
	TotalValue float64       `json:"Total Value"`
	Details    []AgingDetail `json:"Details"`
}

// AgingDetail is one aging open opportunity.
type AgingDetail struct {
	AccountName     string  `json:"Account Name"`
	OpportunityName string  `json:"Opportunity Name"`
	TotalACV        float64 `json:"Total ACV"`
	CreatedDate     string  `json:"Created Date"`
	Stage           string  `json:"Stage"`
	DaysOpen        int     `json:"Days Open"`
}

// Severity levels of pattern findings.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Insight is one ranked finding of the pattern analyzer. Finding holds one
// bullet line per segment.
type Insight struct {
	Category string         `json:"category"`
	Finding  string         `json:"finding"`
	Severity string         `json:"severity"`
	Segments []segment.Stat `json:"segments"`
}

// LossAnalysis is the loss-pattern section. Summary is nil when there are no losses.
type LossAnalysis struct {
	HasData bool   `json:"has_data"`
	Message string `json:"message,omitempty"`
	*LossSummary
}

// LossSummary holds the loss-pattern figures.
type LossSummary struct {
	TotalLost      int       `json:"total_lost"`
	TotalValueLost float64   `json:"total_value_lost"`
	AverageValue   float64   `json:"avg_value"`
	AvgCycleLength float64   `json:"avg_cycle_length"`
	AvgCycleDays   int       `json:"avg_cycle_days"`
	Insights       []Insight `json:"insights"`
}

// WinAnalysis is the win-pattern section. Summary is nil when there are no wins.
type WinAnalysis struct {
	HasData bool   `json:"has_data"`
	Message string `json:"message,omitempty"`
	*WinSummary
}

// WinSummary holds the win-pattern figures. Cycle length is reported as
// whole days only.
type WinSummary struct {
	TotalWon       int       `json:"total_won"`
	TotalValueWon  float64   `json:"total_value_won"`
	AverageValue   float64   `json:"avg_value"`
	AvgCycleLength int       `json:"avg_cycle_length"`
	Insights       []Insight `json:"insights"`
}

// ScoreResult is the open-opportunity scoring section. Summary is nil when
// there is nothing to score or nothing to score against.
type ScoreResult struct {
	HasData bool   `json:"has_data"`
	Message string `json:"message,omitempty"`
	*ScoreSummary
}

// Open returns the number of scored open opportunities.
func (s ScoreResult) Open() int {
	if s.ScoreSummary == nil {
		return 0
	}
	return s.TotalOpen
}

// ScoreSummary holds the ranked scores and report-level rollups.
type ScoreSummary struct {
	TotalOpen      int                 `json:"total_open"`
	TotalOpenValue float64             `json:"total_open_value"`
	AverageScore   float64             `json:"average_score"`
	BaseWinRate    float64             `json:"base_win_rate"`
	Opportunities  []ScoredOpportunity `json:"opportunities"`
	Table          []ScoreRow          `json:"table"`
}

// ScoredOpportunity is one open opportunity with its score and rationale.
type ScoredOpportunity struct {
	AccountName       string             `json:"account_name"`
	OpportunityName   string             `json:"opportunity_name"`
	Stage             string             `json:"stage"`
	TotalACV          float64            `json:"total_acv"`
	FinalScore        float64            `json:"final_score"`
	RiskLevel         string             `json:"risk_level"`
	PerDimensionRates map[string]float64 `json:"per_dimension_rates"`
	Dimensions        []DimensionScore   `json:"dimensions"`
	InsightLines      []string           `json:"insight_lines"`
}

// DimensionScore is the historical evidence behind one scoring dimension.
// CILow and CIHigh bound the win rate with a 95% Jeffreys interval. For the
// practice-area dimension Rate and the interval are means over the matched
// tokens, while Matched and Wins count the closed deals matching any of them.
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Segment   string  `json:"segment"`
	Matched   int     `json:"matched"`
	Wins      int     `json:"wins"`
	Rate      float64 `json:"rate"`
	CILow     float64 `json:"ci_low"`
	CIHigh    float64 `json:"ci_high"`

	raw float64
}

// ScoreRow is the display-formatted view of a ScoredOpportunity.
type ScoreRow struct {
	AccountName     string `json:"Account Name"`
	OpportunityName string `json:"Opportunity Name"`
	Stage           string `json:"Stage"`
	TotalACV        string `json:"Total ACV"`
	Score           string `json:"Score"`
	RiskLevel       string `json:"Risk Level"`
	Insights        string `json:"Insights"`
}
