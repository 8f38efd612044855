// Package money parses catalog cost strings and rounds dollar amounts.
//
// Catalog estimates are free text such as "$20/mo", "~$1,234.50" or "free".
// ParseAmount extracts the first dollar figure it finds and normalizes
// yearly prices ("/yr", "/year", "/año", "per year") to a monthly amount.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches the first number in a cost string, allowing
// thousands separators and a decimal part.
var amountPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// yearlyPattern matches a yearly billing period after the amount.
var yearlyPattern = regexp.MustCompile(`(?i)/\s*(?:yr|year|año|ano)|per\s+(?:yr|year)|yearly|annual`)

var monthsPerYear = decimal.NewFromInt(12)

// ParseAmount extracts a monthly dollar amount from a cost string.
// Yearly prices are divided by 12. Returns ok=false when the string holds
// no number.
func ParseAmount(s string) (float64, bool) {
	loc := amountPattern.FindStringIndex(s)
	if loc == nil {
		return 0, false
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s[loc[0]:loc[1]], ",", ""))
	if err != nil {
		return 0, false
	}
	if yearlyPattern.MatchString(s[loc[1]:]) {
		d = d.Div(monthsPerYear)
	}
	return d.InexactFloat64(), true
}

// RoundCents rounds an amount to 2 decimal places, half away from zero.
func RoundCents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Accumulator sums amounts without float drift.
type Accumulator struct {
	total decimal.Decimal
}

// Add adds an amount.
func (a *Accumulator) Add(amount float64) {
	a.total = a.total.Add(decimal.NewFromFloat(amount))
}

// Total returns the running total rounded to cents.
func (a *Accumulator) Total() float64 {
	return a.total.Round(2).InexactFloat64()
}
