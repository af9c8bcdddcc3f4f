package analysis

import (
	"sort"

	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"
)

const dateLayout = "2006-01-02"

func formatDate(o *opportunity.Opportunity) string {
	if o.CreatedDate.IsZero() {
		return ""
	}
	return o.CreatedDate.Format(dateLayout)
}

func byAccount(o *opportunity.Opportunity) (string, bool) {
	return o.AccountName, o.AccountName != ""
}

func byType(o *opportunity.Opportunity) (string, bool) {
	return o.Type, o.Type != ""
}

// ComputeSegmentPerformance rolls volume, deal size and win rate up by
// account (name order), type (first-appearance order) and exploded
// practice-area token (volume order). Practice areas here use exact token
// membership.
func ComputeSegmentPerformance(opps []*opportunity.Opportunity) SegmentPerformance {
	perf := SegmentPerformance{
		AccountPerformance:      []AccountPerformance{},
		TypePerformance:         []TypePerformance{},
		PracticeAreaPerformance: []PracticeAreaPerformance{},
	}

	for _, g := range segment.ByKey(opps, byAccount) {
		perf.AccountPerformance = append(perf.AccountPerformance, AccountPerformance{
			AccountName: g.Key,
			TotalVolume: round2(totalACV(g.Members)),
			AvgDealSize: round2(mean(acvs(g.Members))),
			WinRate:     round2(segment.Rate(countWon(g.Members), len(g.Members))),
		})
	}
	sort.SliceStable(perf.AccountPerformance, func(i, j int) bool {
		return perf.AccountPerformance[i].AccountName < perf.AccountPerformance[j].AccountName
	})

	for _, g := range segment.ByKey(opps, byType) {
		tp := TypePerformance{
			Type:          g.Key,
			TotalVolume:   round2(totalACV(g.Members)),
			AvgDealSize:   round2(mean(acvs(g.Members))),
			WinRate:       round2(segment.Rate(countWon(g.Members), len(g.Members))),
			Opportunities: make([]OpportunityRef, 0, len(g.Members)),
		}
		for _, o := range g.Members {
			tp.Opportunities = append(tp.Opportunities, OpportunityRef{
				AccountName:     o.AccountName,
				OpportunityName: o.OpportunityName,
				TotalACV:        o.TotalACV,
				CreatedDate:     formatDate(o),
				Type:            o.Type,
			})
		}
		perf.TypePerformance = append(perf.TypePerformance, tp)
	}

	// Exact explode: each token of a row is its own group member.
	index := make(map[string]int)
	var groups []segment.Group
	for _, o := range opps {
		for _, token := range o.PracticeAreas {
			i, seen := index[token]
			if !seen {
				i = len(groups)
				index[token] = i
				groups = append(groups, segment.Group{Key: token})
			}
			groups[i].Members = append(groups[i].Members, o)
		}
	}
	for _, g := range groups {
		perf.PracticeAreaPerformance = append(perf.PracticeAreaPerformance, PracticeAreaPerformance{
			PracticeArea: g.Key,
			TotalVolume:  round2(totalACV(g.Members)),
			AvgDealSize:  round2(mean(acvs(g.Members))),
			WinRate:      round2(segment.Rate(countWon(g.Members), len(g.Members))),
		})
	}
	sort.SliceStable(perf.PracticeAreaPerformance, func(i, j int) bool {
		return perf.PracticeAreaPerformance[i].TotalVolume > perf.PracticeAreaPerformance[j].TotalVolume
	})

	return perf
}
