package public

import "testing"

func TestInferSchema(t *testing.T) {
	cols := inferSchema([]string{"Date", "Category", "Amount", "Notes", "Payment", "Receipt", "Priority"})
	want := columnMap{
		timestamp:   notFound,
		date:        0,
		category:    1,
		amount:      2,
		description: 3,
		payment:     4,
		receipt:     5,
		importance:  6,
	}
	if cols != want {
		t.Fatalf("got %+v, want %+v", cols, want)
	}
}

func TestInferSchemaRenamedAndReordered(t *testing.T) {
	cols := inferSchema([]string{"Timestamp", "How much was spent", "Type", "Details", "Pay mode", "Date of Expense"})
	if cols.timestamp != 0 {
		t.Errorf("timestamp: got %d, want 0", cols.timestamp)
	}
	if cols.amount != 1 {
		t.Errorf("amount via 'spent': got %d, want 1", cols.amount)
	}
	if cols.category != 2 {
		t.Errorf("category via 'type': got %d, want 2", cols.category)
	}
	if cols.description != 3 {
		t.Errorf("description via 'details': got %d, want 3", cols.description)
	}
	if cols.payment != 4 {
		t.Errorf("payment via 'pay': got %d, want 4", cols.payment)
	}
	if cols.date != 5 {
		t.Errorf("date via 'date of expense': got %d, want 5", cols.date)
	}
}

func TestInferSchemaMissingColumns(t *testing.T) {
	cols := inferSchema([]string{"Amount"})
	if cols.amount != 0 {
		t.Fatalf("amount: got %d, want 0", cols.amount)
	}
	for name, idx := range map[string]int{
		"timestamp":   cols.timestamp,
		"date":        cols.date,
		"category":    cols.category,
		"description": cols.description,
		"payment":     cols.payment,
		"receipt":     cols.receipt,
		"importance":  cols.importance,
	} {
		if idx != notFound {
			t.Errorf("%s: got %d, want notFound", name, idx)
		}
	}
}

func TestInferSchemaFirstMatchWins(t *testing.T) {
	// Two headers match the amount keywords; the lower column index is the
	// documented deterministic tie-break.
	cols := inferSchema([]string{"Amount", "Cost"})
	if cols.amount != 0 {
		t.Fatalf("amount: got %d, want 0", cols.amount)
	}
}

func TestInferSchemaCaseInsensitive(t *testing.T) {
	cols := inferSchema([]string{"DATE", "CATEGORY", "AMOUNT"})
	if cols.date != 0 || cols.category != 1 || cols.amount != 2 {
		t.Fatalf("got %+v", cols)
	}
}
