package public

import (
	"testing"
	"time"
)

func TestParseDateISO(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15 14:30:00", time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)},
		{"2024-03-15T14:30:00Z", time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := parseDate(tc.in, DayFirst); !got.Equal(tc.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDateSlashOrder(t *testing.T) {
	// 05/03/2024 is ambiguous; the configured order decides.
	dmy := parseDate("05/03/2024", DayFirst)
	if dmy.Day() != 5 || dmy.Month() != time.March {
		t.Errorf("day-first: got %v, want 5 March", dmy)
	}
	mdy := parseDate("05/03/2024", MonthFirst)
	if mdy.Day() != 3 || mdy.Month() != time.May {
		t.Errorf("month-first: got %v, want 3 May", mdy)
	}

	// 15/03/2024 only works day-first; both orders must still parse it.
	for _, order := range []DateOrder{DayFirst, MonthFirst} {
		got := parseDate("15/03/2024", order)
		if got.Day() != 15 || got.Month() != time.March {
			t.Errorf("order %s: got %v, want 15 March", order, got)
		}
	}
}

func TestParseDateFallbackToNow(t *testing.T) {
	for _, in := range []string{"", "not a date", "32/13/2024"} {
		before := time.Now()
		got := parseDate(in, DayFirst)
		after := time.Now()
		if got.Before(before) || got.After(after) {
			t.Errorf("parseDate(%q) = %v, want roughly now", in, got)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"450", "450"},
		{"₹1,234", "1234"},
		{"$ 99.50", "99.5"},
		{"1,23,456", "123456"},
		{"-5", "-5"},
		{"0", "0"},
		{"abc", "0"},
		{"", "0"},
		{"₹", "0"},
	}
	for _, tc := range cases {
		if got := parseAmount(tc.in); got.String() != tc.want {
			t.Errorf("parseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseReceipt(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Yes", true},
		{"YES", true},
		{"yes please", true},
		{"No", false},
		{"true", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := parseReceipt(tc.in); got != tc.want {
			t.Errorf("parseReceipt(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseImportance(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1", 1},
		{"5", 5},
		{"4", 4},
		{" 2 ", 2},
		{"7", 3},
		{"0", 3},
		{"", 3},
		{"x", 3},
	}
	for _, tc := range cases {
		if got := parseImportance(tc.in); got != tc.want {
			t.Errorf("parseImportance(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
