// Package features derives tabular features from transaction metadata:
// calendar features of the booking date and a coarse amount bucket.
package features

import (
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateStringLayout renders dates as "January 02 2006".
const DateStringLayout = "January 02 2006"

// Dates holds the calendar features of one date.
type Dates struct {
	DateString string
	Month      int
	MonthName  string
	Year       int
	// WeekDay counts from Monday=1 to Sunday=7.
	WeekDay    int
	DayOfYear  int
	WeekOfYear int
}

// DateFeatures derives the calendar features of t.
func DateFeatures(t time.Time) Dates {
	_, week := t.ISOWeek()
	weekDay := int(t.Weekday())
	if weekDay == 0 {
		weekDay = 7
	}
	return Dates{
		DateString: t.Format(DateStringLayout),
		Month:      int(t.Month()),
		MonthName:  t.Month().String(),
		Year:       t.Year(),
		WeekDay:    weekDay,
		DayOfYear:  t.YearDay(),
		WeekOfYear: week,
	}
}

// Bucket is a coarse transaction amount class.
type Bucket string

// Amount buckets, lower bound inclusive.
const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
	BucketLuxury Bucket = "luxury"
)

var bucketEdges = []struct {
	upper  decimal.Decimal
	bucket Bucket
}{
	{decimal.NewFromInt(50), BucketLow},
	{decimal.NewFromInt(500), BucketMedium},
	{decimal.NewFromInt(1000), BucketHigh},
}

// QuantizeAmount places amount in the right-open bins [0,50), [50,500),
// [500,1000) and [1000,inf). Negative amounts fall outside every bin.
func QuantizeAmount(amount decimal.Decimal) (Bucket, bool) {
	if amount.IsNegative() {
		return "", false
	}
	for _, edge := range bucketEdges {
		if amount.LessThan(edge.upper) {
			return edge.bucket, true
		}
	}
	return BucketLuxury, true
}

// Derive builds the features available for a record. Missing metadata leaves
// the matching fields empty.
func Derive(r domain.RawRecord) domain.Features {
	var f domain.Features
	if r.HasDate() {
		d := DateFeatures(r.Date)
		f.HasDate = true
		f.DateString = d.DateString
		f.Month = d.Month
		f.MonthName = d.MonthName
		f.Year = d.Year
		f.WeekDay = d.WeekDay
		f.DayOfYear = d.DayOfYear
		f.WeekOfYear = d.WeekOfYear
	}
	if r.Amount.Valid {
		if b, ok := QuantizeAmount(r.Amount.Decimal); ok {
			f.AmountBin = string(b)
			f.HasAmountBin = true
		}
	}
	return f
}

// Attach derives features for every normalized record in place.
func Attach(records []domain.NormalizedRecord) {
	for i := range records {
		f := Derive(records[i].RawRecord)
		records[i].Features = &f
	}
}
