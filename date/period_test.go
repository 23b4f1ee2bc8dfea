package date

import (
	"testing"
	"time"
)

func TestNewRange(t *testing.T) {
	testCases := []struct {
		name   string
		in     Date
		period Period
		want   Range
	}{
		{"single day", New(2025, time.September, 8), Daily, Range{New(2025, time.September, 8), New(2025, time.September, 8)}},
		{"a wednesday", New(2025, time.September, 10), Weekly, Range{New(2025, time.September, 8), New(2025, time.September, 14)}},
		{"a sunday", New(2025, time.September, 14), Weekly, Range{New(2025, time.September, 8), New(2025, time.September, 14)}},
		{"a leap year", New(2024, time.February, 15), Monthly, Range{New(2024, time.February, 1), New(2024, time.February, 29)}},
		{"Q2", New(2025, time.May, 20), Quarterly, Range{New(2025, time.April, 1), New(2025, time.June, 30)}},
		{"Q4", New(2025, time.November, 2), Quarterly, Range{New(2025, time.October, 1), New(2025, time.December, 31)}},
		{"year", New(2025, time.September, 8), Yearly, Range{New(2025, time.January, 1), New(2025, time.December, 31)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewRange(tc.in, tc.period); got != tc.want {
				t.Errorf("NewRange(%v, %v) = %v, want %v", tc.in, tc.period, got, tc.want)
			}
		})
	}
}

func TestRange_Identifier(t *testing.T) {
	testCases := []struct {
		in   Range
		want string
	}{
		{NewRange(New(2025, time.September, 8), Daily), "2025-09-08"},
		{NewRange(New(2025, time.September, 8), Weekly), "2025-W37"},
		{NewRange(New(2025, time.September, 8), Monthly), "2025-09"},
		{NewRange(New(2025, time.September, 8), Quarterly), "2025-Q3"},
		{NewRange(New(2025, time.September, 8), Yearly), "2025"},
		{Range{New(2025, time.September, 2), New(2025, time.September, 10)}, "2025-09-02_2025-09-10"},
	}
	for _, tc := range testCases {
		if got := tc.in.Identifier(); got != tc.want {
			t.Errorf("%v.Identifier() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBetween(t *testing.T) {
	r, err := Between(New(2024, 1, 30), New(2024, 2, 2))
	if err != nil {
		t.Fatalf("Between() unexpected error = %v", err)
	}
	if r.From != New(2024, 1, 30) || r.To != New(2024, 2, 2) {
		t.Errorf("Between() = %v, want 2024-01-30..2024-02-02", r)
	}
	if !r.Contains(New(2024, 1, 30)) || !r.Contains(New(2024, 2, 2)) {
		t.Errorf("Contains() must include both bounds of %v", r)
	}
	if r.Contains(New(2024, 2, 3)) {
		t.Errorf("Contains(2024-02-03) = true for %v", r)
	}

	if _, err := Between(New(2024, 2, 2), New(2024, 1, 30)); err == nil {
		t.Errorf("Between(after, before) expected an error")
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range []Period{Daily, Weekly, Monthly, Quarterly, Yearly} {
		got, err := ParsePeriod(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePeriod(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParsePeriod("hourly"); err == nil {
		t.Errorf("ParsePeriod(hourly) expected an error")
	}
}
