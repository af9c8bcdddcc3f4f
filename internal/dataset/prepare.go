// Package dataset turns a loosely typed pipeline export into typed
// opportunities. Missing columns are defaulted and unparseable cells are
// coerced; every such decision is returned as a Diagnostic rather than logged.
package dataset

import (
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/coercer"
	"github.com/keatontom/salesforce-opportunity-analysis/adapters/excel"
	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
)

// Dataset is the canonical prepared table plus the fixed clock of the run.
type Dataset struct {
	Opportunities []*opportunity.Opportunity
	// Now is the single timestamp used for defaults, ages and date ranges.
	Now time.Time
}

// Len returns the number of prepared rows.
func (d *Dataset) Len() int { return len(d.Opportunities) }

// Preparer normalizes raw tables into Datasets.
type Preparer struct {
	coercer *coercer.TypeCoercer
}

// NewPreparer creates a preparer with the given coercer; nil uses the defaults.
func NewPreparer(c *coercer.TypeCoercer) *Preparer {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &Preparer{coercer: c}
}

// Prepare normalizes table using the default coercion rules.
func Prepare(table *excel.ExcelData, now time.Time) (*Dataset, []Diagnostic) {
	return NewPreparer(nil).Prepare(table, now)
}

// Prepare fills missing required columns, coerces numeric and date cells and
// derives time-to-close for every row. It never fails.
func (p *Preparer) Prepare(table *excel.ExcelData, now time.Time) (*Dataset, []Diagnostic) {
	if table == nil {
		table = &excel.ExcelData{}
	}
	var diags []Diagnostic
	for _, d := range table.Duplicates {
		diags = append(diags, duplicateColumn(d))
	}

	present := make(map[string]bool, len(table.Headers))
	for _, h := range table.Headers {
		present[h] = true
	}
	for _, col := range opportunity.RequiredColumns {
		if present[col.Name] {
			continue
		}
		switch col.Kind {
		case opportunity.KindString:
			diags = append(diags, missingColumn(col.Name, "'"+opportunity.DefaultString+"'"))
		case opportunity.KindNumeric:
			diags = append(diags, missingColumn(col.Name, "0"))
		case opportunity.KindDate:
			diags = append(diags, missingColumn(col.Name, "the current date"))
		}
	}

	str := func(row excel.RawRowData, name string) string {
		if !present[name] {
			return opportunity.DefaultString
		}
		return row[name]
	}

	opps := make([]*opportunity.Opportunity, len(table.Rows))
	for i, row := range table.Rows {
		opps[i] = &opportunity.Opportunity{
			AccountName:      str(row, opportunity.ColAccountName),
			OpportunityName:  str(row, opportunity.ColOpportunityName),
			Stage:            str(row, opportunity.ColStage),
			Type:             str(row, opportunity.ColType),
			CampaignSource:   str(row, opportunity.ColCampaignSource),
			ClosedLostReason: str(row, opportunity.ColClosedLostReason),
			PracticeArea:     str(row, opportunity.ColPracticeArea),
		}
		opps[i].PracticeAreas = opportunity.SplitPracticeAreas(opps[i].PracticeArea)
	}

	if present[opportunity.ColTotalACV] {
		values, bad := p.numericColumn(table.Column(opportunity.ColTotalACV))
		for i, v := range values {
			opps[i].TotalACV = v
		}
		if bad > 0 {
			diags = append(diags, unparseableNumbers(opportunity.ColTotalACV, bad))
		}
	}
	if present[opportunity.ColNumLawyers] {
		values, bad := p.numericColumn(table.Column(opportunity.ColNumLawyers))
		for i, v := range values {
			opps[i].NumLawyers = v
		}
		if bad > 0 {
			diags = append(diags, unparseableNumbers(opportunity.ColNumLawyers, bad))
		}
	}

	created, d := p.dateColumn(table, present, opportunity.ColCreatedDate, now)
	diags = append(diags, d...)
	closed, d := p.dateColumn(table, present, opportunity.ColCloseDate, now)
	diags = append(diags, d...)
	for i, o := range opps {
		o.CreatedDate = created[i]
		o.CloseDate = closed[i]
		o.ComputeTimeToClose()
	}

	return &Dataset{Opportunities: opps, Now: now}, diags
}

// numericColumn coerces cells to numbers; blank and unparseable cells become 0.
// Only non-blank failures are counted.
func (p *Preparer) numericColumn(cells []string) ([]float64, int) {
	values := make([]float64, len(cells))
	bad := 0
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		v, ok := p.coercer.ParseNumber(cell)
		if !ok {
			bad++
			continue
		}
		values[i] = v
	}
	return values, bad
}

// dateColumn parses a date column. An absent column, or one with any
// unparseable non-blank cell, is replaced wholesale by now.
func (p *Preparer) dateColumn(table *excel.ExcelData, present map[string]bool, name string, now time.Time) ([]time.Time, []Diagnostic) {
	values := make([]time.Time, len(table.Rows))
	fill := func() {
		for i := range values {
			values[i] = now
		}
	}
	if !present[name] {
		fill()
		return values, nil
	}

	bad := 0
	for i, cell := range table.Column(name) {
		if cell == "" {
			continue
		}
		t, ok := p.coercer.ParseTimestamp(cell)
		if !ok {
			bad++
			continue
		}
		values[i] = t
	}
	if bad > 0 {
		fill()
		return values, []Diagnostic{unparseableDates(name, bad)}
	}
	return values, nil
}
