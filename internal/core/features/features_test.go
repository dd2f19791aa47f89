package features

import (
	"testing"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/shopspring/decimal"
)

func TestDateFeatures(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want Dates
	}{
		{
			name: "sunday at the end of an ISO week",
			date: time.Date(2023, time.January, 1, 10, 0, 0, 0, time.UTC),
			want: Dates{DateString: "January 01 2023", Month: 1, MonthName: "January", Year: 2023, WeekDay: 7, DayOfYear: 1, WeekOfYear: 52},
		},
		{
			name: "monday",
			date: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			want: Dates{DateString: "March 04 2024", Month: 3, MonthName: "March", Year: 2024, WeekDay: 1, DayOfYear: 64, WeekOfYear: 10},
		},
		{
			name: "last day of a leap year",
			date: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: Dates{DateString: "December 31 2024", Month: 12, MonthName: "December", Year: 2024, WeekDay: 2, DayOfYear: 366, WeekOfYear: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DateFeatures(tc.date); got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestQuantizeAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   Bucket
		ok     bool
	}{
		{"0", BucketLow, true},
		{"49.99", BucketLow, true},
		{"50", BucketMedium, true},
		{"499.99", BucketMedium, true},
		{"500", BucketHigh, true},
		{"999.999", BucketHigh, true},
		{"1000", BucketLuxury, true},
		{"125000.10", BucketLuxury, true},
		{"-0.01", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			got, ok := QuantizeAmount(decimal.RequireFromString(tc.amount))
			if got != tc.want || ok != tc.ok {
				t.Errorf("QuantizeAmount(%s) = %q, %v; want %q, %v", tc.amount, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	rec := domain.NewRawRecord("KONZUM")
	rec.Date = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	rec.Amount = decimal.NewNullDecimal(decimal.RequireFromString("72.40"))

	f := Derive(rec)
	if !f.HasDate || f.WeekDay != 1 || f.MonthName != "March" {
		t.Errorf("unexpected date features: %+v", f)
	}
	if !f.HasAmountBin || f.AmountBin != string(BucketMedium) {
		t.Errorf("unexpected amount bin: %+v", f)
	}

	empty := Derive(domain.NewRawRecord("KONZUM"))
	if empty.HasDate || empty.HasAmountBin {
		t.Errorf("expected no features, got %+v", empty)
	}
}

func TestAttach(t *testing.T) {
	rec := domain.NewRawRecord("x")
	rec.Amount = decimal.NewNullDecimal(decimal.NewFromInt(2000))
	records := []domain.NormalizedRecord{{RawRecord: rec}}

	Attach(records)
	if records[0].Features == nil || records[0].Features.AmountBin != "luxury" {
		t.Errorf("unexpected features: %+v", records[0].Features)
	}
}
