package public

import "strings"

// notFound is the sentinel index for a semantic field with no matching header.
const notFound = -1

// Candidate substrings per semantic field, checked in order against
// lowercased header cells. The lists tolerate renamed, reordered and missing
// columns; when several headers match the same field, the first column index
// wins (deterministic tie-break, no further inference).
var (
	timestampKeywords   = []string{"timestamp", "time stamp", "created"}
	dateKeywords        = []string{"date of expense", "expense date", "date"}
	categoryKeywords    = []string{"category", "type"}
	amountKeywords      = []string{"amount", "spent", "cost", "price"}
	descriptionKeywords = []string{"description", "desc", "note", "details"}
	paymentKeywords     = []string{"payment", "method", "pay"}
	receiptKeywords     = []string{"receipt"}
	importanceKeywords  = []string{"importance", "priority", "scale"}
)

// columnMap holds the inferred column index for each semantic field, or
// notFound when the header row has no match.
type columnMap struct {
	timestamp   int
	date        int
	category    int
	amount      int
	description int
	payment     int
	receipt     int
	importance  int
}

// inferSchema maps semantic fields to column positions from the tokenized
// header row.
func inferSchema(headers []string) columnMap {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	find := func(keywords []string) int {
		for i, h := range lowered {
			for _, k := range keywords {
				if strings.Contains(h, k) {
					return i
				}
			}
		}
		return notFound
	}

	return columnMap{
		timestamp:   find(timestampKeywords),
		date:        find(dateKeywords),
		category:    find(categoryKeywords),
		amount:      find(amountKeywords),
		description: find(descriptionKeywords),
		payment:     find(paymentKeywords),
		receipt:     find(receiptKeywords),
		importance:  find(importanceKeywords),
	}
}
