package analysis

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatCurrency renders v as $1,234.56.
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatPercent renders a 0-100 value with two decimals, as 66.67%.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// formatPct1 renders a 0-100 value with one decimal and no sign.
func formatPct1(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
