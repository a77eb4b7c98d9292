package core

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryMobile        Category = "Mobile"
	CategoryGroceries     Category = "Groceries"
	CategoryHome          Category = "Home"
	CategoryLoans         Category = "Loans"
	CategoryEMI           Category = "EMI"
	CategoryTransport     Category = "Transport"
	CategoryHealth        Category = "Health"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryFood          Category = "Food"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

const (
	PaymentUPI          PaymentMethod = "UPI"
	PaymentCash         PaymentMethod = "Cash"
	PaymentCard         PaymentMethod = "Card"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
)

const (
	// ImportanceDefault is the mid value substituted when a source cell is
	// missing or out of range.
	ImportanceDefault = 3

	ImportanceMin = 1
	ImportanceMax = 5
)

type (
	// Category is a closed enumeration; every expense belongs to exactly one.
	Category string

	// PaymentMethod is a closed enumeration; every expense has exactly one.
	PaymentMethod string

	// Expense is one normalized transaction record. Records are constructed
	// fresh on every fetch cycle and never mutated afterwards; an update is a
	// full replacement of the working collection.
	Expense struct {
		ID              string          `json:"id"`
		RecordedAt      time.Time       `json:"recordedAt"`
		Date            time.Time       `json:"expenseDate"`
		Category        Category        `json:"category"`
		Amount          decimal.Decimal `json:"amount"`
		Description     string          `json:"description"`
		PaymentMethod   PaymentMethod   `json:"paymentMethod"`
		ReceiptRequired bool            `json:"receiptRequired"`
		Importance      int             `json:"importance"`

		// Provisional marks a locally-added record that has been accepted by
		// the write-back endpoint but not yet confirmed by a re-fetch.
		Provisional bool `json:"provisional,omitempty"`
	}
)

// Categories lists the closed enumeration in display order.
var Categories = []Category{
	CategoryMobile, CategoryGroceries, CategoryHome, CategoryLoans,
	CategoryEMI, CategoryTransport, CategoryHealth, CategoryEntertainment,
	CategoryShopping, CategoryFood, CategoryUtilities, CategoryOther,
}

// PaymentMethods lists the closed enumeration in display order.
var PaymentMethods = []PaymentMethod{
	PaymentUPI, PaymentCash, PaymentCard, PaymentBankTransfer,
}

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidCategory   = errors.New("unknown category")
	ErrInvalidPayment    = errors.New("unknown payment method")
	ErrInvalidImportance = errors.New("importance out of range")
	ErrZeroDate          = errors.New("expense date cannot be zero")
)

// ParseCategory matches s against the enumeration, case-insensitively and
// ignoring surrounding whitespace. Unrecognized input maps to CategoryOther.
func ParseCategory(s string) Category {
	normalized := strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), normalized) {
			return c
		}
	}
	return CategoryOther
}

// ParsePaymentMethod maps free text to a payment method. Substring heuristics
// are checked in fixed priority order before falling back to an exact
// case-insensitive match; anything still unrecognized maps to PaymentUPI.
func ParsePaymentMethod(s string) PaymentMethod {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(normalized, "upi"):
		return PaymentUPI
	case strings.Contains(normalized, "cash"):
		return PaymentCash
	case strings.Contains(normalized, "card"),
		strings.Contains(normalized, "credit"),
		strings.Contains(normalized, "debit"):
		return PaymentCard
	case strings.Contains(normalized, "bank"),
		strings.Contains(normalized, "transfer"),
		strings.Contains(normalized, "neft"),
		strings.Contains(normalized, "imps"):
		return PaymentBankTransfer
	}
	for _, m := range PaymentMethods {
		if strings.EqualFold(string(m), normalized) {
			return m
		}
	}
	return PaymentUPI
}

func (c Category) Validate() error {
	for _, known := range Categories {
		if c == known {
			return nil
		}
	}
	return ErrInvalidCategory
}

func (m PaymentMethod) Validate() error {
	for _, known := range PaymentMethods {
		if m == known {
			return nil
		}
	}
	return ErrInvalidPayment
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := e.PaymentMethod.Validate(); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Importance < ImportanceMin || e.Importance > ImportanceMax {
		return ErrInvalidImportance
	}
	return nil
}

// SortByDateDesc orders expenses by expense date, most recent first. The sort
// is stable so rows sharing a date keep their source order. Consumers rely on
// this ordering for default display.
func SortByDateDesc(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}
