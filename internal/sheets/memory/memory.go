// Package memory provides an in-process data backend: a generated sample
// expense set served through the same ports as a connected sheet. Used when
// no spreadsheet is configured and as a fixture in tests.
package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendsheet/internal/core"
	"spendsheet/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

var (
	_ sheets.SnapshotFetcher = (*Store)(nil)
	_ sheets.ExpenseAppender = (*Store)(nil)
)

// New returns a store holding the given expenses, sorted.
func New(items []core.Expense) *Store {
	sorted := append([]core.Expense(nil), items...)
	core.SortByDateDesc(sorted)
	return &Store{items: sorted}
}

// NewWithSampleData seeds the store with count generated expenses spread
// over the trailing three months.
func NewWithSampleData(count int) *Store {
	return New(GenerateSampleExpenses(count))
}

// FetchAll returns a copy of the stored collection. The source argument is
// ignored; the store has a single working set.
func (s *Store) FetchAll(_ context.Context, _ sheets.Source) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Expense(nil), s.items...)
	return out, nil
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	core.SortByDateDesc(s.items)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// sampleDescriptions pools plausible descriptions per category.
var sampleDescriptions = map[core.Category][]string{
	core.CategoryMobile:        {"Phone recharge", "Data pack", "Jio recharge", "Airtel plan", "Vi pack"},
	core.CategoryGroceries:     {"Weekly groceries", "Vegetables", "Fruits & veggies", "Monthly stock", "Milk & dairy"},
	core.CategoryHome:          {"Rent payment", "Maintenance", "Electricity bill", "Water bill", "House repairs"},
	core.CategoryLoans:         {"Personal loan EMI", "Car loan", "Education loan", "Home loan"},
	core.CategoryEMI:           {"Credit card EMI", "Phone EMI", "Laptop EMI", "AC EMI", "TV EMI"},
	core.CategoryTransport:     {"Petrol", "Uber/Ola", "Metro card", "Bus fare", "Auto fare"},
	core.CategoryHealth:        {"Medicine", "Doctor consultation", "Lab tests", "Pharmacy", "Health checkup"},
	core.CategoryEntertainment: {"Netflix", "Movies", "Spotify", "Gaming", "Concert tickets"},
	core.CategoryShopping:      {"Clothes", "Electronics", "Amazon order", "Flipkart", "Online shopping"},
	core.CategoryFood:          {"Restaurant", "Swiggy", "Zomato", "Dining out", "Office lunch"},
	core.CategoryUtilities:     {"Gas cylinder", "Internet bill", "DTH recharge", "Cable TV", "Society maintenance"},
	core.CategoryOther:         {"Miscellaneous", "Gift", "Donation", "Personal expense"},
}

// sampleAmountRanges bounds generated amounts per category, whole units.
var sampleAmountRanges = map[core.Category][2]int{
	core.CategoryMobile:        {199, 999},
	core.CategoryGroceries:     {500, 5000},
	core.CategoryHome:          {5000, 25000},
	core.CategoryLoans:         {5000, 15000},
	core.CategoryEMI:           {2000, 10000},
	core.CategoryTransport:     {100, 3000},
	core.CategoryHealth:        {200, 5000},
	core.CategoryEntertainment: {100, 2000},
	core.CategoryShopping:      {500, 15000},
	core.CategoryFood:          {150, 2500},
	core.CategoryUtilities:     {200, 3000},
	core.CategoryOther:         {100, 5000},
}

// GenerateSampleExpenses produces count random records over the trailing
// three months, sorted by expense date descending.
func GenerateSampleExpenses(count int) []core.Expense {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	end := time.Now()
	start := end.AddDate(0, -3, 0)
	span := end.Sub(start)

	expenses := make([]core.Expense, 0, count)
	for i := 0; i < count; i++ {
		category := core.Categories[rng.Intn(len(core.Categories))]
		date := start.Add(time.Duration(rng.Int63n(int64(span))))
		recorded := time.Date(date.Year(), date.Month(), date.Day(),
			8+rng.Intn(14), rng.Intn(60), rng.Intn(60), 0, date.Location())

		bounds := sampleAmountRanges[category]
		amount := bounds[0] + rng.Intn(bounds[1]-bounds[0]+1)
		pool := sampleDescriptions[category]

		expenses = append(expenses, core.Expense{
			ID:              fmt.Sprintf("sample-%d-%d", i, end.UnixMilli()),
			RecordedAt:      recorded,
			Date:            date,
			Category:        category,
			Amount:          decimal.NewFromInt(int64(amount)),
			Description:     pool[rng.Intn(len(pool))],
			PaymentMethod:   core.PaymentMethods[rng.Intn(len(core.PaymentMethods))],
			ReceiptRequired: rng.Intn(5) == 0,
			Importance:      1 + rng.Intn(5),
		})
	}

	core.SortByDateDesc(expenses)
	return expenses
}
