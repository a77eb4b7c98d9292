package public

import (
	"fmt"
	"strings"
	"time"

	"spendsheet/internal/core"
)

// minViableFields is the defensive guard against blank or malformed lines:
// a data row with fewer tokenized fields is skipped outright.
const minViableFields = 3

// ParseCSV normalizes a raw CSV export into the canonical record collection.
// Row 1 is the header row; schema inference maps semantic fields to columns.
// Rows that fail the viability checks (too few fields, non-positive amount)
// are silently skipped; individual fields that fail to coerce take their
// documented defaults. The result is sorted by expense date descending.
//
// A header-only body yields an empty, valid collection.
func ParseCSV(text string, order DateOrder) []core.Expense {
	lines := strings.Split(text, "\n")
	expenses := make([]core.Expense, 0)
	if len(lines) < 2 {
		return expenses
	}

	cols := inferSchema(splitCSVLine(strings.TrimRight(lines[0], "\r")))

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		values := splitCSVLine(line)
		if len(values) < minViableFields {
			continue
		}

		get := func(col int) string {
			if col == notFound || col >= len(values) {
				return ""
			}
			return values[col]
		}

		amount := parseAmount(get(cols.amount))
		if !amount.IsPositive() {
			continue
		}

		// With no distinct timestamp column the import timestamp falls back
		// to the expense-date cell; a blank expense-date cell falls back the
		// other way.
		tsRaw := get(cols.timestamp)
		if cols.timestamp == notFound {
			tsRaw = get(cols.date)
		}
		dateRaw := get(cols.date)
		if dateRaw == "" {
			dateRaw = tsRaw
		}

		description := get(cols.description)
		if description == "" {
			description = get(cols.category)
		}

		expenses = append(expenses, core.Expense{
			// Time-based soft uniqueness only; not cryptographically unique.
			ID:              fmt.Sprintf("sheet-%d-%d", i, time.Now().UnixMilli()),
			RecordedAt:      parseDate(tsRaw, order),
			Date:            parseDate(dateRaw, order),
			Category:        core.ParseCategory(get(cols.category)),
			Amount:          amount,
			Description:     description,
			PaymentMethod:   core.ParsePaymentMethod(get(cols.payment)),
			ReceiptRequired: parseReceipt(get(cols.receipt)),
			Importance:      parseImportance(get(cols.importance)),
		})
	}

	core.SortByDateDesc(expenses)
	return expenses
}
