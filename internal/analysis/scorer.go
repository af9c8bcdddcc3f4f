package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"

	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sentinel messages of the scoring section.
const (
	MsgNoHistory = "No historical data available for analysis"
	MsgNoOpen    = "No open opportunities to score"
)

// Scoring dimensions, in evaluation order.
const (
	DimPracticeArea = "Practice Area"
	DimFirmSize     = "Firm Size"
	DimType         = "Opportunity Type"
	DimCampaign     = "Campaign Source"
	DimDealValue    = "Deal Value"
)

// Scorer ranks open opportunities by the historical win rates of the closed
// deals they resemble.
type Scorer struct {
	policy Policy
}

// NewScorer creates a scorer with the given policy.
func NewScorer(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

// history is the read-only view of closed deals shared by all scoring workers.
type history struct {
	closed     []*opportunity.Opportunity
	baseRate   float64
	byFirmSize map[opportunity.FirmSize]tally
	byType     map[string]tally
	byCampaign map[string]tally
	byToken    map[string]tally
	// byValue is closed deals sorted by ACV with running win counts, for band lookups.
	byValue    []float64
	winsBefore []int
}

// tally is the matched population of one segment.
type tally struct {
	n    int
	wins int
}

func (t tally) add(o *opportunity.Opportunity) tally {
	t.n++
	if o.IsWon() {
		t.wins++
	}
	return t
}

func newHistory(closed []*opportunity.Opportunity, idx *segment.PracticeIndex) *history {
	h := &history{
		closed:     closed,
		baseRate:   segment.Rate(countWon(closed), len(closed)),
		byFirmSize: make(map[opportunity.FirmSize]tally),
		byType:     make(map[string]tally),
		byCampaign: make(map[string]tally),
		byToken:    make(map[string]tally),
	}
	for _, o := range closed {
		if size, ok := o.FirmSize(); ok {
			h.byFirmSize[size] = h.byFirmSize[size].add(o)
		}
		if o.Type != "" {
			h.byType[o.Type] = h.byType[o.Type].add(o)
		}
		if o.CampaignSource != "" {
			h.byCampaign[o.CampaignSource] = h.byCampaign[o.CampaignSource].add(o)
		}
	}
	for _, token := range idx.Tokens() {
		matched := idx.Matching(closed, token)
		h.byToken[token] = tally{n: len(matched), wins: countWon(matched)}
	}

	sorted := append([]*opportunity.Opportunity(nil), closed...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalACV < sorted[j].TotalACV })
	h.byValue = make([]float64, len(sorted))
	h.winsBefore = make([]int, len(sorted)+1)
	for i, o := range sorted {
		h.byValue[i] = o.TotalACV
		h.winsBefore[i+1] = h.winsBefore[i]
		if o.IsWon() {
			h.winsBefore[i+1]++
		}
	}
	return h
}

// valueBand counts closed deals with ACV in [from, to].
func (h *history) valueBand(from, to float64) tally {
	start := sort.SearchFloat64s(h.byValue, from)
	end := sort.Search(len(h.byValue), func(i int) bool { return h.byValue[i] > to })
	if end <= start {
		return tally{}
	}
	return tally{n: end - start, wins: h.winsBefore[end] - h.winsBefore[start]}
}

// jeffreys returns the 95% Jeffreys interval for wins out of n on a 0-100 scale.
func jeffreys(wins, n int) (float64, float64) {
	if n <= 0 {
		return 0, 100
	}
	beta := distuv.Beta{Alpha: float64(wins) + 0.5, Beta: float64(n-wins) + 0.5}
	low, high := 0.0, 1.0
	if wins > 0 {
		low = beta.Quantile(0.025)
	}
	if wins < n {
		high = beta.Quantile(0.975)
	}
	return round2(low * 100), round2(high * 100)
}

func dimension(name, seg string, t tally, rate float64) DimensionScore {
	low, high := jeffreys(t.wins, t.n)
	return DimensionScore{
		Dimension: name,
		Segment:   seg,
		Matched:   t.n,
		Wins:      t.wins,
		Rate:      round2(rate),
		CILow:     low,
		CIHigh:    high,
		raw:       rate,
	}
}

// dimensions evaluates every scoring dimension of o against history,
// skipping those with no matching closed deals.
func (s *Scorer) dimensions(o *opportunity.Opportunity, h *history, idx *segment.PracticeIndex) []DimensionScore {
	var dims []DimensionScore

	// Practice area: mean of the per-token rates of matched tokens. The
	// interval is the mean of the per-token intervals so it brackets the
	// rate; Matched and Wins count the union of matched rows.
	var tokenRates, tokenLows, tokenHighs []float64
	var matchedTokens []string
	for _, token := range o.PracticeAreas {
		t, ok := h.byToken[token]
		if !ok {
			matched := idx.Matching(h.closed, token)
			t = tally{n: len(matched), wins: countWon(matched)}
		}
		if t.n == 0 {
			continue
		}
		low, high := jeffreys(t.wins, t.n)
		tokenRates = append(tokenRates, segment.Rate(t.wins, t.n))
		tokenLows = append(tokenLows, low)
		tokenHighs = append(tokenHighs, high)
		matchedTokens = append(matchedTokens, token)
	}
	if len(tokenRates) > 0 {
		union := idx.Union(h.closed, matchedTokens)
		t := tally{n: len(union), wins: countWon(union)}
		d := dimension(DimPracticeArea, strings.Join(matchedTokens, "; "), t, mean(tokenRates))
		d.CILow, d.CIHigh = round2(mean(tokenLows)), round2(mean(tokenHighs))
		dims = append(dims, d)
	}

	if size, ok := o.FirmSize(); ok {
		if t := h.byFirmSize[size]; t.n > 0 {
			dims = append(dims, dimension(DimFirmSize, size.String(), t, segment.Rate(t.wins, t.n)))
		}
	}
	if o.Type != "" {
		if t := h.byType[o.Type]; t.n > 0 {
			dims = append(dims, dimension(DimType, o.Type, t, segment.Rate(t.wins, t.n)))
		}
	}
	if o.CampaignSource != "" {
		if t := h.byCampaign[o.CampaignSource]; t.n > 0 {
			dims = append(dims, dimension(DimCampaign, o.CampaignSource, t, segment.Rate(t.wins, t.n)))
		}
	}

	low, high := o.TotalACV*s.policy.ValueBandLow, o.TotalACV*s.policy.ValueBandHigh
	if low > high {
		low, high = high, low
	}
	if t := h.valueBand(low, high); t.n > 0 {
		seg := FormatCurrency(low) + " - " + FormatCurrency(high)
		dims = append(dims, dimension(DimDealValue, seg, t, segment.Rate(t.wins, t.n)))
	}
	return dims
}

func (s *Scorer) scoreOne(o *opportunity.Opportunity, h *history, idx *segment.PracticeIndex) ScoredOpportunity {
	dims := s.dimensions(o, h, idx)
	if dims == nil {
		dims = []DimensionScore{}
	}

	rates := make(map[string]float64, len(dims))
	lines := make([]string, 0, len(dims)+1)
	raw := make([]float64, 0, len(dims))
	for _, d := range dims {
		rates[d.Dimension] = d.Rate
		raw = append(raw, d.raw)
		lines = append(lines, fmt.Sprintf("%s (%s): %s%% historical win rate across %d closed deals",
			d.Dimension, d.Segment, formatPct1(d.Rate), d.Matched))
	}

	var score float64
	if len(raw) > 0 {
		score = round2(mean(raw))
		lines = append(lines, fmt.Sprintf("Final score %s averaged over %d dimension(s)", FormatPercent(score), len(raw)))
	} else {
		score = round2(h.baseRate)
		lines = append(lines,
			fmt.Sprintf("No comparable historical segments; using overall win rate of %s", FormatPercent(score)),
			fmt.Sprintf("Final score %s from the overall win rate (0 dimensions matched)", FormatPercent(score)))
	}

	return ScoredOpportunity{
		AccountName:       o.AccountName,
		OpportunityName:   o.OpportunityName,
		Stage:             o.Stage,
		TotalACV:          o.TotalACV,
		FinalScore:        score,
		RiskLevel:         s.policy.RiskLevel(score),
		PerDimensionRates: rates,
		Dimensions:        dims,
		InsightLines:      lines,
	}
}

// Score scores every open opportunity of all against its closed deals and
// ranks them by score, highest first. Rows are scored concurrently by up to
// ScoreWorkers goroutines; the only error is ctx cancellation.
func (s *Scorer) Score(ctx context.Context, all []*opportunity.Opportunity, idx *segment.PracticeIndex) (ScoreResult, error) {
	won, lost, open := opportunity.Partition(all)
	closed := append(append([]*opportunity.Opportunity(nil), won...), lost...)
	if len(closed) == 0 {
		return ScoreResult{HasData: false, Message: MsgNoHistory}, nil
	}
	if len(open) == 0 {
		return ScoreResult{HasData: false, Message: MsgNoOpen}, nil
	}

	if err := ctx.Err(); err != nil {
		return ScoreResult{}, err
	}

	h := newHistory(closed, idx)
	scored := make([]ScoredOpportunity, len(open))

	workers := int64(s.policy.ScoreWorkers)
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(workers)
	var wg sync.WaitGroup
	for i, o := range open {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return ScoreResult{}, err
		}
		wg.Add(1)
		go func(i int, o *opportunity.Opportunity) {
			defer wg.Done()
			defer sem.Release(1)
			scored[i] = s.scoreOne(o, h, idx)
		}(i, o)
	}
	wg.Wait()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].FinalScore > scored[j].FinalScore })

	table := lo.Map(scored, func(so ScoredOpportunity, _ int) ScoreRow {
		return ScoreRow{
			AccountName:     so.AccountName,
			OpportunityName: so.OpportunityName,
			Stage:           so.Stage,
			TotalACV:        FormatCurrency(so.TotalACV),
			Score:           FormatPercent(so.FinalScore),
			RiskLevel:       so.RiskLevel,
			Insights:        strings.Join(so.InsightLines, "\n"),
		}
	})
	scores := lo.Map(scored, func(so ScoredOpportunity, _ int) float64 { return so.FinalScore })

	return ScoreResult{
		HasData: true,
		ScoreSummary: &ScoreSummary{
			TotalOpen:      len(open),
			TotalOpenValue: round2(totalACV(open)),
			AverageScore:   round2(mean(scores)),
			BaseWinRate:    round2(h.baseRate),
			Opportunities:  scored,
			Table:          table,
		},
	}, nil
}
