package analysis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/excel"
	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis/segment"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.June, 30, 9, 0, 0, 0, time.UTC)

type fixture struct {
	account, name, stage, typ, campaign, reason, practice string
	acv, lawyers                                         float64
	created, closed                                      time.Time
}

func (f fixture) build() *opportunity.Opportunity {
	o := &opportunity.Opportunity{
		AccountName:      f.account,
		OpportunityName:  f.name,
		Stage:            f.stage,
		Type:             f.typ,
		CampaignSource:   f.campaign,
		ClosedLostReason: f.reason,
		PracticeArea:     f.practice,
		PracticeAreas:    opportunity.SplitPracticeAreas(f.practice),
		TotalACV:         f.acv,
		NumLawyers:       f.lawyers,
		CreatedDate:      f.created,
		CloseDate:        f.closed,
	}
	o.ComputeTimeToClose()
	return o
}

func build(fs ...fixture) []*opportunity.Opportunity {
	opps := make([]*opportunity.Opportunity, len(fs))
	for i, f := range fs {
		opps[i] = f.build()
	}
	return opps
}

func daysAgo(n int) time.Time { return now.AddDate(0, 0, -n) }

// scenarioA is 10 closed deals: 6 won at 100, 4 lost at 50.
func scenarioA() []*opportunity.Opportunity {
	var fs []fixture
	for i := 0; i < 6; i++ {
		fs = append(fs, fixture{account: "Acme", stage: "Won", typ: "New", acv: 100, created: daysAgo(40), closed: daysAgo(10)})
	}
	for i := 0; i < 4; i++ {
		fs = append(fs, fixture{account: "Baker", stage: "Lost", typ: "New", reason: "Price", acv: 50, created: daysAgo(30), closed: daysAgo(10)})
	}
	return build(fs...)
}

func TestCoreMetricsScenarioA(t *testing.T) {
	m := ComputeCoreMetrics(scenarioA())
	assert.Equal(t, 60.0, m.WinRate)
	assert.Equal(t, 800.0, m.TotalVolume)
	assert.Equal(t, 80.0, m.AverageDealSize)
	assert.Equal(t, 10, m.NumberOfOpportunities)
	assert.Equal(t, 26.0, m.AverageTimeToClose)
}

func TestCoreMetricsEmpty(t *testing.T) {
	assert.Equal(t, CoreMetrics{}, ComputeCoreMetrics(nil))
}

func TestUnknownPracticeAreaExcludedFromSegments(t *testing.T) {
	opps := build(
		fixture{account: "A", stage: "Won", practice: "IP;Real Estate", acv: 100},
		fixture{account: "B", stage: "Lost", practice: "Unknown", acv: 300},
		fixture{account: "C", stage: "Lost", practice: "Real Estate", acv: 50},
	)

	perf := ComputeSegmentPerformance(opps)
	keys := make([]string, 0, len(perf.PracticeAreaPerformance))
	for _, p := range perf.PracticeAreaPerformance {
		keys = append(keys, p.PracticeArea)
	}
	assert.Equal(t, []string{"Real Estate", "IP"}, keys, "sorted by volume, no Unknown bucket")
	assert.Equal(t, 150.0, perf.PracticeAreaPerformance[0].TotalVolume)
	assert.Equal(t, 50.0, perf.PracticeAreaPerformance[0].WinRate)

	loss := NewPatternAnalyzer(DefaultPolicy()).AnalyzeLosses(opps, segment.NewPracticeIndex(opps))
	require.True(t, loss.HasData)
	practice := loss.Insights[3]
	assert.Equal(t, CategoryPracticeLoss, practice.Category)
	require.Len(t, practice.Segments, 1)
	assert.Equal(t, "Real Estate", practice.Segments[0].Key)
	assert.Equal(t, 50.0, practice.Segments[0].Rate)

	core := ComputeCoreMetrics(opps)
	assert.Equal(t, 450.0, core.TotalVolume, "the Unknown deal still counts toward totals")
	assert.Equal(t, 3, core.NumberOfOpportunities)
}

func TestSegmentPerformanceOrdering(t *testing.T) {
	created := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	opps := build(
		fixture{account: "Zeta", name: "Z1", stage: "Won", typ: "Upsell", acv: 10, created: created},
		fixture{account: "Alpha", name: "A1", stage: "Lost", typ: "New", acv: 30},
		fixture{account: "Alpha", name: "A2", stage: "Won", typ: "Upsell", acv: 50},
	)
	perf := ComputeSegmentPerformance(opps)

	require.Len(t, perf.AccountPerformance, 2)
	assert.Equal(t, AccountPerformance{AccountName: "Alpha", TotalVolume: 80, AvgDealSize: 40, WinRate: 50}, perf.AccountPerformance[0])

	require.Len(t, perf.TypePerformance, 2)
	assert.Equal(t, "Upsell", perf.TypePerformance[0].Type)
	assert.Len(t, perf.TypePerformance[0].Opportunities, 2)
	assert.Equal(t, "2024-02-03", perf.TypePerformance[0].Opportunities[0].CreatedDate)
	assert.Equal(t, 100.0, perf.TypePerformance[0].WinRate)
	assert.Empty(t, perf.PracticeAreaPerformance)
}

func TestPipelineHealth(t *testing.T) {
	opps := build(
		fixture{name: "stale", stage: "Proposal", acv: 500, created: daysAgo(120)},
		fixture{name: "fresh", stage: "Proposal", acv: 300, created: daysAgo(10)},
		fixture{name: "edge", stage: "Negotiation", acv: 200, created: daysAgo(90)},
		fixture{name: "old-lost", stage: "Lost", reason: "Price", acv: 100, created: daysAgo(400)},
	)
	health := ComputePipelineHealth(opps, now, DefaultPolicy().AgingDays)

	assert.Equal(t, StageShare{Percentage: 0.5, Count: 2}, health.StageDistribution["Proposal"])
	assert.Equal(t, StageShare{Percentage: 0.25, Count: 1}, health.StageDistribution["Lost"])
	assert.Equal(t, map[string]int{"Price": 1}, health.LostReasons)

	aging := health.AgingOpportunities
	require.Equal(t, 1, aging.Count, "exactly 90 days is not aging")
	assert.Equal(t, 500.0, aging.TotalValue)
	assert.Equal(t, "stale", aging.Details[0].OpportunityName)
	assert.Equal(t, 120, aging.Details[0].DaysOpen)
	assert.Equal(t, daysAgo(120).Format("2006-01-02"), aging.Details[0].CreatedDate)
}

func lossFixture() []*opportunity.Opportunity {
	return build(
		// Five "Legacy" deals, four lost: 80% loss rate.
		fixture{stage: "Lost", typ: "Legacy", reason: "Price", campaign: "Spring Email Blast", practice: "IP", acv: 100, lawyers: 10, created: daysAgo(50), closed: daysAgo(20)},
		fixture{stage: "Lost", typ: "Legacy", reason: "Price", campaign: "Newsletter", practice: "IP;Real Estate", acv: 100, lawyers: 50, created: daysAgo(50), closed: daysAgo(30)},
		fixture{stage: "Lost", typ: "Legacy", reason: "Timing", campaign: "Partner Summit", practice: "Corporate", acv: 400, lawyers: 51, created: daysAgo(50), closed: daysAgo(45)},
		fixture{stage: "Lost", typ: "Legacy", reason: "", campaign: "", practice: "Unknown", acv: 0, lawyers: 900},
		fixture{stage: "Won", typ: "Legacy", campaign: "Product Demo", practice: "IP", acv: 1000, lawyers: 10, created: daysAgo(60), closed: daysAgo(30)},
		fixture{stage: "Proposal", typ: "Other", campaign: "Partner Summit", practice: "IP", acv: 100, lawyers: 10},
	)
}

func TestAnalyzeLosses(t *testing.T) {
	opps := lossFixture()
	loss := NewPatternAnalyzer(DefaultPolicy()).AnalyzeLosses(opps, segment.NewPracticeIndex(opps))
	require.True(t, loss.HasData)
	assert.Equal(t, 4, loss.TotalLost)
	assert.Equal(t, 600.0, loss.TotalValueLost)
	assert.Equal(t, 150.0, loss.AverageValue)
	assert.Equal(t, 18.33, loss.AvgCycleLength)
	assert.Equal(t, 18, loss.AvgCycleDays)
	require.Len(t, loss.Insights, 5)

	reasons := loss.Insights[0]
	assert.Equal(t, CategoryLossReasons, reasons.Category)
	assert.Equal(t, SeverityHigh, reasons.Severity)
	assert.Equal(t, "• Price (50.0%): 2 losses ($200.00 total value)\n• Timing (25.0%): 1 losses ($400.00 total value)", reasons.Finding)

	types := loss.Insights[1]
	assert.Equal(t, SeverityHigh, types.Severity)
	assert.Equal(t, "• Legacy: 80.0% loss rate (4/5 lost, $600.00)", types.Finding)

	sizes := loss.Insights[2]
	require.Len(t, sizes.Segments, 3)
	assert.Equal(t, []string{"0-50 Lawyers", "51-200 Lawyers", "500+ Lawyers"},
		[]string{sizes.Segments[0].Key, sizes.Segments[1].Key, sizes.Segments[2].Key})
	assert.Equal(t, 50.0, sizes.Segments[0].Rate)

	practice := loss.Insights[3]
	assert.Equal(t, SeverityHigh, practice.Severity)
	assert.Equal(t, "IP", practice.Segments[0].Key)
	assert.Equal(t, 50.0, practice.Segments[0].Rate)

	campaigns := loss.Insights[4]
	assert.Equal(t, SeverityMedium, campaigns.Severity)
	require.Len(t, campaigns.Segments, 1, "single-deal campaign categories are gated out")
	assert.Equal(t, opportunity.CampaignEmail, campaigns.Segments[0].Key)
	assert.Equal(t, "• Email Campaigns: 2 losses ($200.00 total value)", campaigns.Finding)
}

func TestAnalyzeWins(t *testing.T) {
	opps := lossFixture()
	win := NewPatternAnalyzer(DefaultPolicy()).AnalyzeWins(opps, segment.NewPracticeIndex(opps))
	require.True(t, win.HasData)
	assert.Equal(t, 1, win.TotalWon)
	assert.Equal(t, 30, win.AvgCycleLength)
	require.Len(t, win.Insights, 4)

	assert.Equal(t, CategoryFirmSize, win.Insights[0].Category)
	assert.Equal(t, "• 0-50 Lawyers: 100.0% of wins (1 wins, $1,000.00 total value)", win.Insights[0].Finding)
	assert.Equal(t, CategoryPracticeWin, win.Insights[1].Category)
	assert.Equal(t, SeverityHigh, win.Insights[1].Severity)

	types := win.Insights[2]
	assert.Equal(t, "• Legacy: 20.0% win rate (1/5 won, $1,000.00)", types.Finding)
	assert.Equal(t, SeverityHigh, types.Severity, "Legacy loses 80% of the time")

	assert.Empty(t, win.Insights[3].Segments)
	assert.Equal(t, "", win.Insights[3].Finding)
}

func TestPatternSentinels(t *testing.T) {
	opps := build(fixture{stage: "Proposal"})
	pa := NewPatternAnalyzer(DefaultPolicy())
	idx := segment.NewPracticeIndex(opps)

	loss := pa.AnalyzeLosses(opps, idx)
	assert.False(t, loss.HasData)
	assert.Equal(t, MsgNoLost, loss.Message)
	assert.Nil(t, loss.LossSummary)

	win := pa.AnalyzeWins(opps, idx)
	assert.False(t, win.HasData)
	assert.Equal(t, MsgNoWon, win.Message)

	body, err := json.Marshal(loss)
	require.NoError(t, err)
	assert.JSONEq(t, `{"has_data":false,"message":"No lost opportunities to analyze"}`, string(body))
}

// scenarioC: the open deal only resembles closed deals by value.
func scenarioC() []*opportunity.Opportunity {
	return build(
		fixture{account: "H1", stage: "Won", typ: "A", campaign: "Email", practice: "IP", acv: 900, lawyers: 10},
		fixture{account: "H2", stage: "Won", typ: "A", campaign: "Email", practice: "IP", acv: 1100, lawyers: 10},
		fixture{account: "H3", stage: "Lost", typ: "A", campaign: "Email", practice: "IP", acv: 1200, lawyers: 10},
		fixture{account: "H4", stage: "Lost", typ: "A", campaign: "Email", practice: "IP", acv: 5000, lawyers: 10},
		fixture{account: "H5", stage: "Lost", typ: "A", campaign: "Email", practice: "IP", acv: 100, lawyers: 10},
		fixture{account: "Open Co", name: "Big Deal", stage: "Proposal", typ: "Z", campaign: "Trade Show", practice: "Maritime", acv: 1000, lawyers: 1000},
	)
}

func TestScoreScenarioC(t *testing.T) {
	opps := scenarioC()
	res, err := NewScorer(DefaultPolicy()).Score(context.Background(), opps, segment.NewPracticeIndex(opps))
	require.NoError(t, err)
	require.True(t, res.HasData)
	require.Len(t, res.Opportunities, 1)

	so := res.Opportunities[0]
	assert.Equal(t, 66.67, so.FinalScore)
	assert.Equal(t, RiskMedium, so.RiskLevel)
	assert.Equal(t, map[string]float64{DimDealValue: 66.67}, so.PerDimensionRates)
	require.Len(t, so.Dimensions, 1)
	d := so.Dimensions[0]
	assert.Equal(t, 3, d.Matched)
	assert.Equal(t, 2, d.Wins)
	assert.Equal(t, "$800.00 - $1,200.00", d.Segment)
	assert.Greater(t, d.CILow, 0.0)
	assert.Less(t, d.CIHigh, 100.0)
	assert.Less(t, d.CILow, d.Rate)
	assert.Greater(t, d.CIHigh, d.Rate)

	assert.Equal(t, []string{
		"Deal Value ($800.00 - $1,200.00): 66.7% historical win rate across 3 closed deals",
		"Final score 66.67% averaged over 1 dimension(s)",
	}, so.InsightLines)

	assert.Equal(t, 1, res.TotalOpen)
	assert.Equal(t, 1000.0, res.TotalOpenValue)
	assert.Equal(t, 66.67, res.AverageScore)
	assert.Equal(t, 40.0, res.BaseWinRate)
	require.Len(t, res.Table, 1)
	assert.Equal(t, ScoreRow{
		AccountName:     "Open Co",
		OpportunityName: "Big Deal",
		Stage:           "Proposal",
		TotalACV:        "$1,000.00",
		Score:           "66.67%",
		RiskLevel:       RiskMedium,
		Insights:        "Deal Value ($800.00 - $1,200.00): 66.7% historical win rate across 3 closed deals\nFinal score 66.67% averaged over 1 dimension(s)",
	}, res.Table[0])
}

func TestScoreAllOpenReturnsSentinel(t *testing.T) {
	opps := build(fixture{stage: "Proposal"}, fixture{stage: "Negotiation"})
	res, err := NewScorer(DefaultPolicy()).Score(context.Background(), opps, segment.NewPracticeIndex(opps))
	require.NoError(t, err)
	assert.False(t, res.HasData)
	assert.Equal(t, "No historical data available for analysis", res.Message)

	res, err = NewScorer(DefaultPolicy()).Score(context.Background(), scenarioA(), nil)
	require.NoError(t, err)
	assert.False(t, res.HasData)
	assert.Equal(t, MsgNoOpen, res.Message)
}

func TestScoreFallsBackToBaseRate(t *testing.T) {
	opps := build(
		fixture{stage: "Won", typ: "A", acv: 10, lawyers: -1},
		fixture{stage: "Lost", typ: "A", acv: 20, lawyers: -1},
		fixture{stage: "Lost", typ: "A", acv: 30, lawyers: -1},
		fixture{stage: "Lost", typ: "A", acv: 40, lawyers: -1},
		fixture{stage: "Proposal", typ: "B", acv: 1000, lawyers: -1},
	)
	res, err := NewScorer(DefaultPolicy()).Score(context.Background(), opps, segment.NewPracticeIndex(opps))
	require.NoError(t, err)
	so := res.Opportunities[0]
	assert.Equal(t, 25.0, so.FinalScore)
	assert.Equal(t, RiskHigh, so.RiskLevel)
	assert.Empty(t, so.Dimensions)
	assert.Equal(t, []string{
		"No comparable historical segments; using overall win rate of 25.00%",
		"Final score 25.00% from the overall win rate (0 dimensions matched)",
	}, so.InsightLines)
}

func TestScoreAveragesDimensionsAndRanks(t *testing.T) {
	opps := build(
		fixture{stage: "Won", typ: "A", campaign: "Referral", practice: "IP", acv: 100, lawyers: 10},
		fixture{stage: "Won", typ: "A", campaign: "Webinar", practice: "Tax", acv: 100, lawyers: 10},
		fixture{stage: "Lost", typ: "B", campaign: "Webinar", practice: "IP", acv: 100, lawyers: 300},
		fixture{stage: "Lost", typ: "B", campaign: "Webinar", practice: "Tax", acv: 100, lawyers: 300},
		fixture{name: "weak", stage: "Proposal", typ: "B", acv: 5000, lawyers: 300},
		fixture{name: "strong", stage: "Proposal", typ: "A", campaign: "Referral", practice: "IP;Tax", acv: 100, lawyers: 10},
	)
	policy := DefaultPolicy()
	policy.ScoreWorkers = 2
	res, err := NewScorer(policy).Score(context.Background(), opps, segment.NewPracticeIndex(opps))
	require.NoError(t, err)
	require.Len(t, res.Opportunities, 2)

	strong := res.Opportunities[0]
	assert.Equal(t, "strong", strong.OpportunityName)
	// practice (IP 50, Tax 50 -> 50), firm Small 100, type A 100, campaign Referral 100, value 50
	assert.Equal(t, 80.0, strong.FinalScore)
	assert.Equal(t, RiskLow, strong.RiskLevel)
	assert.Len(t, strong.Dimensions, 5)
	assert.Equal(t, "IP; Tax", strong.Dimensions[0].Segment)
	assert.Equal(t, 4, strong.Dimensions[0].Matched)
	assert.Equal(t, "Final score 80.00% averaged over 5 dimension(s)", strong.InsightLines[len(strong.InsightLines)-1])

	weak := res.Opportunities[1]
	assert.Equal(t, 0.0, weak.FinalScore)
	assert.Equal(t, RiskHigh, weak.RiskLevel)
	assert.Equal(t, 40.0, res.AverageScore)
}

func TestCampaignGateDoesNotApplyToScoring(t *testing.T) {
	opps := build(
		fixture{stage: "Won", campaign: "Spring Webinar", acv: 1},
		fixture{stage: "Lost", campaign: "Trade Show", acv: 50000, lawyers: -1},
		fixture{stage: "Lost", campaign: "Direct", acv: 50000, lawyers: -1},
		fixture{stage: "Proposal", campaign: "Spring Webinar", acv: 999999, lawyers: -1},
	)
	idx := segment.NewPracticeIndex(opps)

	win := NewPatternAnalyzer(DefaultPolicy()).AnalyzeWins(opps, idx)
	assert.Empty(t, win.Insights[3].Segments, "one webinar win is below the campaign gate")

	res, err := NewScorer(DefaultPolicy()).Score(context.Background(), opps, idx)
	require.NoError(t, err)
	so := res.Opportunities[0]
	assert.Equal(t, 100.0, so.PerDimensionRates[DimCampaign])
	assert.Equal(t, "Spring Webinar", so.Dimensions[0].Segment)
}

func TestScoreHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opps := scenarioC()
	_, err := NewScorer(DefaultPolicy()).Score(ctx, opps, segment.NewPracticeIndex(opps))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPracticeAreaIntervalBracketsRate(t *testing.T) {
	fs := []fixture{{account: "Small", stage: "Won", typ: "A", practice: "IP", acv: 100}}
	for i := 0; i < 20; i++ {
		fs = append(fs, fixture{account: "Large", stage: "Lost", typ: "A", practice: "Tax", acv: 100})
	}
	fs = append(fs, fixture{account: "Open Co", stage: "Proposal", typ: "Z", practice: "IP;Tax", acv: 100000})
	opps := build(fs...)

	res, err := NewScorer(DefaultPolicy()).Score(context.Background(), opps, segment.NewPracticeIndex(opps))
	require.NoError(t, err)
	require.Len(t, res.Opportunities, 1)

	var d *DimensionScore
	for i := range res.Opportunities[0].Dimensions {
		if res.Opportunities[0].Dimensions[i].Dimension == DimPracticeArea {
			d = &res.Opportunities[0].Dimensions[i]
		}
	}
	require.NotNil(t, d)
	assert.Equal(t, "IP; Tax", d.Segment)
	assert.Equal(t, 21, d.Matched)
	assert.Equal(t, 1, d.Wins)
	assert.Equal(t, 50.0, d.Rate)
	assert.LessOrEqual(t, d.CILow, d.Rate)
	assert.GreaterOrEqual(t, d.CIHigh, d.Rate)
}

func TestJeffreysInterval(t *testing.T) {
	low, high := jeffreys(0, 0)
	assert.Equal(t, 0.0, low)
	assert.Equal(t, 100.0, high)

	low, high = jeffreys(0, 10)
	assert.Equal(t, 0.0, low)
	assert.Greater(t, high, 0.0)
	assert.Less(t, high, 40.0)

	low, high = jeffreys(10, 10)
	assert.Equal(t, 100.0, high)
	assert.Greater(t, low, 60.0)
}

func TestRiskLevelBoundaries(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, RiskLow, p.RiskLevel(70))
	assert.Equal(t, RiskMedium, p.RiskLevel(69.99))
	assert.Equal(t, RiskMedium, p.RiskLevel(40))
	assert.Equal(t, RiskHigh, p.RiskLevel(39.99))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	bad := DefaultPolicy()
	bad.MediumRiskThreshold = 80
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy()
	bad.ValueBandHigh = 0.9
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy()
	bad.ScoreWorkers = 0
	assert.Error(t, bad.Validate())
}

const csvFixture = `Account Name,Opportunity Name,Stage,Close Date,Created Date,Type,Total ACV,Primary Campaign Source,Closed Lost Reason,Law Firm Practice Area,NumofLawyers
Acme,Renewal,Won,2024-03-01,2024-01-10,New Business,"$12,000",Spring Webinar,,IP;Real Estate,50
Baker,Expansion,Lost,2024-04-01,2024-01-15,Upsell,8000,Email Newsletter,Price,Corporate,51
Cole,Pilot,Proposal,,2024-02-01,New Business,9500,Spring Webinar,,IP,120
Dunn,Seats,Won,2024-05-01,2024-02-20,Upsell,4000,Referral,,Tax;Unknown,700
Evans,Trial,Negotiation,,2024-06-01,New Business,11000,,,Real Estate,30
`

func TestAnalyzeIsIdempotent(t *testing.T) {
	data, err := excel.ReadBytes("pipeline.csv", []byte(csvFixture))
	require.NoError(t, err)

	run := func() []byte {
		ds, _ := dataset.Prepare(data, now)
		report, err := NewAnalyzer(DefaultPolicy()).Analyze(context.Background(), ds)
		require.NoError(t, err)
		body, err := json.Marshal(report)
		require.NoError(t, err)
		return body
	}

	first, second := run(), run()
	assert.Equal(t, string(first), string(second))

	var sections map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(first, &sections))
	for _, key := range []string{"Core Metrics", "Segment Performance", "Pipeline Health", "Loss Analysis", "Win Analysis", "Score Open Opportunities"} {
		assert.Contains(t, sections, key)
	}
}

func TestAnalyzeReport(t *testing.T) {
	data, err := excel.ReadBytes("pipeline.csv", []byte(csvFixture))
	require.NoError(t, err)
	ds, diags := dataset.Prepare(data, now)
	assert.Empty(t, diags)

	report, err := NewAnalyzer(DefaultPolicy()).Analyze(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, 5, report.RowCount)
	assert.Equal(t, 40.0, report.CoreMetrics.WinRate)
	assert.Equal(t, 44500.0, report.CoreMetrics.TotalVolume)

	assert.True(t, report.LossAnalysis.HasData)
	assert.True(t, report.WinAnalysis.HasData)
	require.True(t, report.ScoreOpenOpportunities.HasData)
	assert.Equal(t, 2, report.ScoreOpenOpportunities.TotalOpen)
	assert.Len(t, report.ScoreOpenOpportunities.Opportunities, 2)
	for i := 1; i < len(report.ScoreOpenOpportunities.Opportunities); i++ {
		assert.GreaterOrEqual(t,
			report.ScoreOpenOpportunities.Opportunities[i-1].FinalScore,
			report.ScoreOpenOpportunities.Opportunities[i].FinalScore)
	}
	for _, so := range report.ScoreOpenOpportunities.Opportunities {
		assert.GreaterOrEqual(t, so.FinalScore, 0.0)
		assert.LessOrEqual(t, so.FinalScore, 100.0)
	}
}
