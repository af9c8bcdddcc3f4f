package dataset

import (
	"fmt"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/excel"
)

// Severity grades a preparation diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic records one defaulting or coercion decision made while preparing
// the raw table. Preparation never fails; it reports what it changed instead.
type Diagnostic struct {
	Column   string   `json:"column"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Rows     int      `json:"rows,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Column, d.Message)
}

func missingColumn(name, fill string) Diagnostic {
	return Diagnostic{
		Column:   name,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("added missing column '%s' filled with %s", name, fill),
	}
}

func duplicateColumn(d excel.DuplicateHeader) Diagnostic {
	return Diagnostic{
		Column:   d.Original,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("duplicate column '%s' at position %d renamed to '%s'; the first occurrence is used", d.Original, d.Index+1, d.Renamed),
	}
}

func unparseableNumbers(name string, rows int) Diagnostic {
	return Diagnostic{
		Column:   name,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("%d unparseable value(s) coerced to 0", rows),
		Rows:     rows,
	}
}

func unparseableDates(name string, rows int) Diagnostic {
	return Diagnostic{
		Column:   name,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("could not parse %d value(s), using current date for the whole column", rows),
		Rows:     rows,
	}
}

func dateRangeApplied(rangeName string, kept, total int) Diagnostic {
	return Diagnostic{
		Column:   "Created Date",
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("date range '%s' kept %d of %d row(s)", rangeName, kept, total),
		Rows:     total - kept,
	}
}
