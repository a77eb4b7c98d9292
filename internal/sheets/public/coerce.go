package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendsheet/internal/core"
)

// DateOrder selects which slash-separated date layout is tried first. The
// source data cannot distinguish 05/03/2024 day-first from month-first, so
// the preference is explicit configuration rather than a guess.
type DateOrder string

const (
	DayFirst   DateOrder = "dmy"
	MonthFirst DateOrder = "mdy"
)

// isoLayouts are the fully-specified calendar formats tried before any
// ambiguous slash date.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func slashLayouts(order DateOrder) []string {
	dmy := []string{"2/1/2006 15:04:05", "2/1/2006"}
	mdy := []string{"1/2/2006 15:04:05", "1/2/2006"}
	if order == MonthFirst {
		return append(mdy, dmy...)
	}
	return append(dmy, mdy...)
}

// parseDate coerces raw cell text into a timestamp: ISO layouts first, then
// slash dates in the configured order. Every failure path returns the
// current time rather than an error.
func parseDate(s string, order DateOrder) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now()
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	for _, layout := range slashLayouts(order) {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}

// amountStripper removes currency symbols, thousands separators and
// whitespace before numeric parsing.
var amountStripper = strings.NewReplacer("₹", "", "$", "", ",", "", " ", "", "\t", "")

// parseAmount coerces raw cell text into a decimal amount. Anything that is
// not a number comes back as zero, which causes the assembler to drop the
// row.
func parseAmount(s string) decimal.Decimal {
	cleaned := strings.TrimSpace(amountStripper.Replace(s))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseReceipt is true only when the text affirmatively says yes.
func parseReceipt(s string) bool {
	return strings.Contains(strings.ToLower(s), "yes")
}

// parseImportance accepts integers within [1,5]; everything else defaults to
// the mid value.
func parseImportance(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < core.ImportanceMin || n > core.ImportanceMax {
		return core.ImportanceDefault
	}
	return n
}
