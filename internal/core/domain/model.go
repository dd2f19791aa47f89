package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawRecord is one transaction description with the metadata carried alongside it.
// Text is nil when the source cell was missing.
type RawRecord struct {
	ID     string
	Text   *string
	Amount decimal.NullDecimal
	Date   time.Time
	Label  string
}

// NewRawRecord creates a record with a generated ID.
func NewRawRecord(text string) RawRecord {
	return RawRecord{
		ID:   uuid.NewString(),
		Text: &text,
	}
}

// EnsureID assigns a generated ID when the record has none.
func (r RawRecord) EnsureID() RawRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r
}

// HasDate reports whether the record carries a transaction date.
func (r RawRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// NormalizedRecord is the pipeline output for a RawRecord.
type NormalizedRecord struct {
	RawRecord
	Normalized *string
	Features   *Features
}

// Features holds the derived tabular features of a record.
type Features struct {
	DateString   string `json:"dt_date_str,omitempty"`
	Month        int    `json:"dt_month,omitempty"`
	MonthName    string `json:"dt_month_txt,omitempty"`
	Year         int    `json:"dt_year,omitempty"`
	WeekDay      int    `json:"dt_week_day,omitempty"`
	DayOfYear    int    `json:"dt_day_of_year,omitempty"`
	WeekOfYear   int    `json:"dt_week_of_year,omitempty"`
	AmountBin    string `json:"trx_amount_bin,omitempty"`
	HasDate      bool   `json:"-"`
	HasAmountBin bool   `json:"-"`
}
