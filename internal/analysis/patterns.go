package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"

	"github.com/samber/lo"
)

// Sentinel messages for empty populations.
const (
	MsgNoLost = "No lost opportunities to analyze"
	MsgNoWon  = "No won opportunities to analyze"
)

// Finding categories.
const (
	CategoryLossReasons      = "Loss Reasons"
	CategoryTypeAnalysis     = "Type Analysis"
	CategoryFirmSize         = "Firm Size Distribution"
	CategoryPracticeLoss     = "Practice Area Analysis"
	CategoryCampaignLoss     = "Campaign Analysis"
	CategoryPracticeWin      = "Practice Area Success"
	CategoryTypePerformance  = "Type Performance"
	CategoryCampaignWin      = "Campaign Performance"
	typeHighSeverityLossRate = 75.0
)

// PatternAnalyzer mines ranked win and loss findings from a dataset.
type PatternAnalyzer struct {
	policy Policy
}

// NewPatternAnalyzer creates a pattern analyzer with the given policy.
func NewPatternAnalyzer(policy Policy) *PatternAnalyzer {
	return &PatternAnalyzer{policy: policy}
}

func byReason(o *opportunity.Opportunity) (string, bool) {
	return o.ClosedLostReason, o.ClosedLostReason != ""
}

func byCampaignCategory(o *opportunity.Opportunity) (string, bool) {
	return o.CampaignCategory()
}

// firmSizeGroups groups pop by firm-size label in ascending bucket order.
func firmSizeGroups(pop []*opportunity.Opportunity) []segment.Group {
	groups := segment.ByKey(pop, func(o *opportunity.Opportunity) (string, bool) {
		size, ok := o.FirmSize()
		if !ok {
			return "", false
		}
		return size.Label(), true
	})
	byLabel := lo.SliceToMap(groups, func(g segment.Group) (string, segment.Group) { return g.Key, g })
	ordered := make([]segment.Group, 0, len(groups))
	for _, size := range opportunity.FirmSizes {
		if g, ok := byLabel[size.Label()]; ok {
			ordered = append(ordered, g)
		}
	}
	return ordered
}

func insight(category, severity string, stats []segment.Stat, line func(segment.Stat) string) Insight {
	lines := lo.Map(stats, func(s segment.Stat, _ int) string { return line(s) })
	if stats == nil {
		stats = []segment.Stat{}
	}
	return Insight{
		Category: category,
		Finding:  strings.Join(lines, "\n"),
		Severity: severity,
		Segments: stats,
	}
}

// shareLine renders "• label: 40.0% of losses (2 losses, $1,000.00 total value)".
func shareLine(noun string) func(segment.Stat) string {
	return func(s segment.Stat) string {
		return fmt.Sprintf("• %s: %s%% of %s (%d %s, %s total value)",
			s.Key, formatPct1(s.Rate), noun, s.Count, noun, FormatCurrency(s.Value))
	}
}

// countLine renders "• label: 3 losses ($1,000.00 total value)".
func countLine(noun string) func(segment.Stat) string {
	return func(s segment.Stat) string {
		return fmt.Sprintf("• %s: %d %s (%s total value)", s.Key, s.Count, noun, FormatCurrency(s.Value))
	}
}

func typeSeverity(stats []segment.Stat) string {
	if lo.SomeBy(stats, func(s segment.Stat) bool {
		return segment.Rate(s.Losses, s.Count) > typeHighSeverityLossRate
	}) {
		return SeverityHigh
	}
	return SeverityMedium
}

// AnalyzeLosses builds the loss-pattern section. Type rates are taken over
// the whole dataset; every other breakdown is a share of the lost deals.
func (a *PatternAnalyzer) AnalyzeLosses(all []*opportunity.Opportunity, idx *segment.PracticeIndex) LossAnalysis {
	_, lost, _ := opportunity.Partition(all)
	if len(lost) == 0 {
		return LossAnalysis{HasData: false, Message: MsgNoLost}
	}
	p := a.policy
	population := len(lost)
	cycle := mean(cycleDays(lost))

	reasons := segment.Top(segment.Rank(segment.Summarize(
		segment.ByKey(lost, byReason),
		segment.Options{Measure: segment.Share, Population: population},
	)), p.TopLossReasons)

	types := segment.Rank(segment.Summarize(
		segment.ByKey(all, byType),
		segment.Options{Measure: segment.LossRate, ValueStage: opportunity.StageLost, MinCount: p.TypeMinSample},
	))

	sizes := segment.Summarize(firmSizeGroups(lost),
		segment.Options{Measure: segment.Share, Population: population})

	practices := segment.Top(segment.Rank(segment.Summarize(
		segment.ByToken(lost, idx),
		segment.Options{Measure: segment.Share, Population: population},
	)), p.TopPracticeAreas)

	campaigns := segment.Top(segment.Rank(segment.Summarize(
		segment.ByKey(lost, byCampaignCategory),
		segment.Options{Measure: segment.Share, Population: population, MinCount: p.CampaignMinSample},
	)), p.TopCampaigns)

	return LossAnalysis{
		HasData: true,
		LossSummary: &LossSummary{
			TotalLost:      population,
			TotalValueLost: round2(totalACV(lost)),
			AverageValue:   round2(mean(acvs(lost))),
			AvgCycleLength: round2(cycle),
			AvgCycleDays:   int(math.Round(cycle)),
			Insights: []Insight{
				insight(CategoryLossReasons, SeverityHigh, reasons, func(s segment.Stat) string {
					return fmt.Sprintf("• %s (%s%%): %d losses (%s total value)",
						s.Key, formatPct1(s.Rate), s.Count, FormatCurrency(s.Value))
				}),
				insight(CategoryTypeAnalysis, typeSeverity(types), types, func(s segment.Stat) string {
					return fmt.Sprintf("• %s: %s%% loss rate (%d/%d lost, %s)",
						s.Key, formatPct1(s.Rate), s.Losses, s.Count, FormatCurrency(s.Value))
				}),
				insight(CategoryFirmSize, SeverityMedium, sizes, shareLine("losses")),
				insight(CategoryPracticeLoss, SeverityHigh, practices, shareLine("losses")),
				insight(CategoryCampaignLoss, SeverityMedium, campaigns, countLine("losses")),
			},
		},
	}
}

// AnalyzeWins builds the win-pattern section. There is no win-reason field,
// so it has no reasons breakdown.
func (a *PatternAnalyzer) AnalyzeWins(all []*opportunity.Opportunity, idx *segment.PracticeIndex) WinAnalysis {
	won, _, _ := opportunity.Partition(all)
	if len(won) == 0 {
		return WinAnalysis{HasData: false, Message: MsgNoWon}
	}
	p := a.policy
	population := len(won)

	sizes := segment.Summarize(firmSizeGroups(won),
		segment.Options{Measure: segment.Share, Population: population})

	practices := segment.Top(segment.Rank(segment.Summarize(
		segment.ByToken(won, idx),
		segment.Options{Measure: segment.Share, Population: population},
	)), p.TopPracticeAreas)

	types := segment.Rank(segment.Summarize(
		segment.ByKey(all, byType),
		segment.Options{Measure: segment.WinRate, ValueStage: opportunity.StageWon, MinCount: p.TypeMinSample},
	))

	campaigns := segment.Top(segment.Rank(segment.Summarize(
		segment.ByKey(won, byCampaignCategory),
		segment.Options{Measure: segment.Share, Population: population, MinCount: p.CampaignMinSample},
	)), p.TopCampaigns)

	return WinAnalysis{
		HasData: true,
		WinSummary: &WinSummary{
			TotalWon:       population,
			TotalValueWon:  round2(totalACV(won)),
			AverageValue:   round2(mean(acvs(won))),
			AvgCycleLength: int(math.Round(mean(cycleDays(won)))),
			Insights: []Insight{
				insight(CategoryFirmSize, SeverityMedium, sizes, shareLine("wins")),
				insight(CategoryPracticeWin, SeverityHigh, practices, shareLine("wins")),
				insight(CategoryTypePerformance, typeSeverity(types), types, func(s segment.Stat) string {
					return fmt.Sprintf("• %s: %s%% win rate (%d/%d won, %s)",
						s.Key, formatPct1(s.Rate), s.Wins, s.Count, FormatCurrency(s.Value))
				}),
				insight(CategoryCampaignWin, SeverityMedium, campaigns, countLine("wins")),
			},
		},
	}
}
