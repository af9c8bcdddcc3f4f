package render

import (
	"fmt"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"

	"github.com/jedib0t/go-pretty/v6/table"
)

// ScoreTable renders the ranked open opportunities as a text table. With
// verbose set, each row carries its rationale lines.
func ScoreTable(s analysis.ScoreResult, verbose bool) string {
	if !s.HasData {
		return s.Message + "\n"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	header := table.Row{"#", "Account", "Opportunity", "Stage", "Total ACV", "Score", "Risk"}
	if verbose {
		header = append(header, "Insights")
	}
	t.AppendHeader(header)

	for i, row := range s.Table {
		r := table.Row{i + 1, row.AccountName, row.OpportunityName, row.Stage, row.TotalACV, row.Score, row.RiskLevel}
		if verbose {
			r = append(r, row.Insights)
		}
		t.AppendRow(r)
	}
	t.AppendFooter(table.Row{"", "", "", "Total", analysis.FormatCurrency(s.TotalOpenValue), analysis.FormatPercent(s.AverageScore), ""})
	return t.Render() + "\n"
}

// MetricsTable renders the core metrics as a two-column text table.
func MetricsTable(m analysis.CoreMetrics) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total Volume", analysis.FormatCurrency(m.TotalVolume)},
		{"Average Deal Size", analysis.FormatCurrency(m.AverageDealSize)},
		{"Win Rate", analysis.FormatPercent(m.WinRate)},
		{"Average Time to Close", fmt.Sprintf("%.2f days", m.AverageTimeToClose)},
		{"Number of Opportunities", m.NumberOfOpportunities},
	})
	return t.Render() + "\n"
}
