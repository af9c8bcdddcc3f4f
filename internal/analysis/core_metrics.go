package analysis

import (
	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
)

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

func acvs(opps []*opportunity.Opportunity) []float64 {
	return lo.Map(opps, func(o *opportunity.Opportunity, _ int) float64 { return o.TotalACV })
}

func totalACV(opps []*opportunity.Opportunity) float64 {
	return lo.SumBy(opps, func(o *opportunity.Opportunity) float64 { return o.TotalACV })
}

func countWon(opps []*opportunity.Opportunity) int {
	return lo.CountBy(opps, func(o *opportunity.Opportunity) bool { return o.IsWon() })
}

// cycleDays returns the known time-to-close values.
func cycleDays(opps []*opportunity.Opportunity) []float64 {
	return lo.FilterMap(opps, func(o *opportunity.Opportunity, _ int) (float64, bool) {
		return float64(o.TimeToCloseDays), o.HasTimeToClose
	})
}

// ComputeCoreMetrics summarizes volume, deal size, win rate and cycle length.
// Win rate is taken over every row, open deals included.
func ComputeCoreMetrics(opps []*opportunity.Opportunity) CoreMetrics {
	return CoreMetrics{
		TotalVolume:           round2(totalACV(opps)),
		AverageDealSize:       round2(mean(acvs(opps))),
		WinRate:               round2(segment.Rate(countWon(opps), len(opps))),
		AverageTimeToClose:    round2(mean(cycleDays(opps))),
		NumberOfOpportunities: len(opps),
	}
}
