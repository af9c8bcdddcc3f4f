package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TypeCoercer converts raw cell text into typed values with deterministic rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	TimestampFormats []string `json:"timestamp_formats"`
	// Location is applied to layouts without an explicit zone
	Location *time.Location `json:"-"`
}

// DefaultTimestampFormats covers ISO dates and the common spreadsheet export layouts
var DefaultTimestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		TimestampFormats: DefaultTimestampFormats,
		Location:         time.UTC,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.TimestampFormats) == 0 {
		config.TimestampFormats = DefaultTimestampFormats
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &TypeCoercer{config: config}
}

// ParseNumber parses a numeric cell. It accepts currency symbols and codes,
// thousands separators, percent signs, and parentheses for negatives.
func (c *TypeCoercer) ParseNumber(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = normalizeSeparators(cleanVal)

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// normalizeSeparators rewrites 1,234.56 / 1.234,56 / 1 234,56 into 1234.56
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")

	switch {
	case hasComma && hasPeriod:
		// Whichever separator comes last is the decimal point
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if isThousandsGrouped(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return strings.ReplaceAll(s, " ", "")
}

// isThousandsGrouped reports whether every group after the first sep has exactly three digits
func isThousandsGrouped(s, sep string) bool {
	groups := strings.Split(s, sep)
	for _, g := range groups[1:] {
		if len(g) != 3 || strings.Trim(g, "0123456789") != "" {
			return false
		}
	}
	return true
}

// ParseTimestamp parses a date cell against the configured layouts
func (c *TypeCoercer) ParseTimestamp(raw string) (time.Time, bool) {
	strVal := strings.TrimSpace(raw)
	if strVal == "" {
		return time.Time{}, false
	}
	for _, format := range c.config.TimestampFormats {
		if t, err := time.ParseInLocation(format, strVal, c.config.Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
