// Package format renders dashboard values as display strings for the en-US locale.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale is the fixed locale used for every grouped number.
var Locale = language.AmericanEnglish

const (
	currencySymbol    = "$"
	numberMaxFraction = 3
	dateLayout        = "Jan 2, 2006"
)

func printer() *message.Printer {
	return message.NewPrinter(Locale)
}

// Currency renders v as whole US dollars with thousands grouping, e.g. "$254,890".
// Values are rounded half away from zero before formatting.
func Currency(v float64) string {
	rounded := math.Round(v)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + currencySymbol + printer().Sprint(number.Decimal(rounded, number.MaxFractionDigits(0)))
}

// Number renders v with thousands grouping and at most three fraction digits.
func Number(v float64) string {
	if v == 0 {
		v = 0
	}
	v = roundHalfAway(v, numberMaxFraction)
	return printer().Sprint(number.Decimal(v, number.MaxFractionDigits(numberMaxFraction)))
}

// Percent renders v with one decimal place and an explicit sign; zero renders as "+0.0%".
func Percent(v float64) string {
	if v == 0 {
		// collapses negative zero so it keeps the plus sign
		v = 0
	}
	v = roundHalfAway(v, 1)
	if v >= 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

// roundHalfAway resolves exact decimal ties at the given fraction digit away from zero.
// Non-ties are returned unchanged; the formatters already round those to nearest.
func roundHalfAway(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	// every float64 has a finite decimal expansion of at most 1074 fraction digits
	exact := new(big.Float).SetFloat64(v).Text('f', 1100)
	dot := strings.IndexByte(exact, '.')
	frac := exact[dot+1:]
	if frac[digits] != '5' || strings.Trim(frac[digits+1:], "0") != "" {
		return v
	}
	truncated, err := strconv.ParseFloat(exact[:dot+1+digits], 64)
	if err != nil {
		return v
	}
	step := math.Pow10(-digits)
	if v < 0 {
		return truncated - step
	}
	return truncated + step
}

// DateRange renders both endpoints as calendar dates, e.g. "Sep 17, 2026 - Oct 17, 2026".
func DateRange(from, to time.Time) string {
	return from.Format(dateLayout) + " - " + to.Format(dateLayout)
}

// PercentageChange returns the relative change from previous to current in percent.
// A zero previous value yields 0 rather than NaN or Inf.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
