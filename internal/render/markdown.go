// Package render turns an analysis report into markdown, HTML and text tables.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
)

// Markdown renders the whole report as a markdown document.
func Markdown(r *analysis.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Opportunity Analysis\n\n")
	fmt.Fprintf(&b, "- Source: %s\n", orDash(r.Source))
	fmt.Fprintf(&b, "- Date range: %s\n", orDash(r.DateRange))
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- Rows: %d\n\n", r.RowCount)

	if len(r.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&b, "- %s\n", escape(d.String()))
		}
		b.WriteString("\n")
	}

	writeCoreMetrics(&b, r.CoreMetrics)
	writeSegmentPerformance(&b, r.SegmentPerformance)
	writePipelineHealth(&b, r.PipelineHealth)

	b.WriteString("## Loss Analysis\n\n")
	if !r.LossAnalysis.HasData {
		fmt.Fprintf(&b, "_%s_\n\n", r.LossAnalysis.Message)
	} else {
		l := r.LossAnalysis
		fmt.Fprintf(&b, "%d lost opportunities worth %s, average cycle %d days.\n\n",
			l.TotalLost, analysis.FormatCurrency(l.TotalValueLost), l.AvgCycleDays)
		writeInsights(&b, l.Insights)
	}

	b.WriteString("## Win Analysis\n\n")
	if !r.WinAnalysis.HasData {
		fmt.Fprintf(&b, "_%s_\n\n", r.WinAnalysis.Message)
	} else {
		w := r.WinAnalysis
		fmt.Fprintf(&b, "%d won opportunities worth %s, average cycle %d days.\n\n",
			w.TotalWon, analysis.FormatCurrency(w.TotalValueWon), w.AvgCycleLength)
		writeInsights(&b, w.Insights)
	}

	writeScores(&b, r.ScoreOpenOpportunities)
	return b.String()
}

func writeCoreMetrics(b *strings.Builder, m analysis.CoreMetrics) {
	b.WriteString("## Core Metrics\n\n| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Total Volume | %s |\n", analysis.FormatCurrency(m.TotalVolume))
	fmt.Fprintf(b, "| Average Deal Size | %s |\n", analysis.FormatCurrency(m.AverageDealSize))
	fmt.Fprintf(b, "| Win Rate | %s |\n", analysis.FormatPercent(m.WinRate))
	fmt.Fprintf(b, "| Average Time to Close | %.2f days |\n", m.AverageTimeToClose)
	fmt.Fprintf(b, "| Number of Opportunities | %d |\n\n", m.NumberOfOpportunities)
}

func writeSegmentPerformance(b *strings.Builder, s analysis.SegmentPerformance) {
	b.WriteString("## Segment Performance\n\n")

	b.WriteString("### Accounts\n\n| Account | Total Volume | Avg Deal Size | Win Rate |\n|---|---|---|---|\n")
	for _, a := range s.AccountPerformance {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", escape(a.AccountName),
			analysis.FormatCurrency(a.TotalVolume), analysis.FormatCurrency(a.AvgDealSize), analysis.FormatPercent(a.WinRate))
	}

	b.WriteString("\n### Types\n\n| Type | Opportunities | Total Volume | Avg Deal Size | Win Rate |\n|---|---|---|---|---|\n")
	for _, t := range s.TypePerformance {
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s |\n", escape(t.Type), len(t.Opportunities),
			analysis.FormatCurrency(t.TotalVolume), analysis.FormatCurrency(t.AvgDealSize), analysis.FormatPercent(t.WinRate))
	}

	b.WriteString("\n### Practice Areas\n\n| Practice Area | Total Volume | Avg Deal Size | Win Rate |\n|---|---|---|---|\n")
	for _, p := range s.PracticeAreaPerformance {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", escape(p.PracticeArea),
			analysis.FormatCurrency(p.TotalVolume), analysis.FormatCurrency(p.AvgDealSize), analysis.FormatPercent(p.WinRate))
	}
	b.WriteString("\n")
}

func writePipelineHealth(b *strings.Builder, h analysis.PipelineHealth) {
	b.WriteString("## Pipeline Health\n\n| Stage | Count | Share |\n|---|---|---|\n")
	for _, stage := range sortedKeys(h.StageDistribution) {
		s := h.StageDistribution[stage]
		fmt.Fprintf(b, "| %s | %d | %s |\n", escape(orDash(stage)), s.Count, analysis.FormatPercent(s.Percentage*100))
	}

	if len(h.LostReasons) > 0 {
		b.WriteString("\n**Lost reasons**\n\n")
		for _, reason := range sortedKeys(h.LostReasons) {
			fmt.Fprintf(b, "- %s: %d\n", escape(reason), h.LostReasons[reason])
		}
	}

	a := h.AgingOpportunities
	fmt.Fprintf(b, "\n**Aging opportunities:** %d worth %s\n\n", a.Count, analysis.FormatCurrency(a.TotalValue))
	if a.Count > 0 {
		b.WriteString("| Account | Opportunity | Stage | Created | Days Open | Total ACV |\n|---|---|---|---|---|---|\n")
		for _, d := range a.Details {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %d | %s |\n", escape(d.AccountName), escape(d.OpportunityName),
				escape(d.Stage), d.CreatedDate, d.DaysOpen, analysis.FormatCurrency(d.TotalACV))
		}
		b.WriteString("\n")
	}
}

func writeInsights(b *strings.Builder, insights []analysis.Insight) {
	for _, in := range insights {
		fmt.Fprintf(b, "### %s (%s)\n\n", in.Category, in.Severity)
		if in.Finding == "" {
			b.WriteString("_No segments met the reporting threshold._\n\n")
			continue
		}
		for _, line := range strings.Split(in.Finding, "\n") {
			fmt.Fprintf(b, "- %s\n", escape(strings.TrimPrefix(line, "• ")))
		}
		b.WriteString("\n")
	}
}

func writeScores(b *strings.Builder, s analysis.ScoreResult) {
	b.WriteString("## Score Open Opportunities\n\n")
	if !s.HasData {
		fmt.Fprintf(b, "_%s_\n", s.Message)
		return
	}
	fmt.Fprintf(b, "%d open opportunities worth %s, average score %s (overall win rate %s).\n\n",
		s.TotalOpen, analysis.FormatCurrency(s.TotalOpenValue),
		analysis.FormatPercent(s.AverageScore), analysis.FormatPercent(s.BaseWinRate))

	b.WriteString("| Account | Opportunity | Stage | Total ACV | Score | Risk | Insights |\n|---|---|---|---|---|---|---|\n")
	for _, row := range s.Table {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			escape(row.AccountName), escape(row.OpportunityName), escape(row.Stage),
			row.TotalACV, row.Score, row.RiskLevel,
			escape(strings.ReplaceAll(row.Insights, "\n", " / ")))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escape keeps cell text from breaking table and emphasis syntax.
func escape(s string) string {
	r := strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_")
	return r.Replace(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
