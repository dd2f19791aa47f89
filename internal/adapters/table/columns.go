// Package table reads transaction records from CSV and XLSX tables and writes
// normalized records back out.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Errors returned while mapping table rows to records.
var (
	ErrMissingColumn = errors.New("required column is missing")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyTable    = errors.New("table has no header row")
)

// DefaultDateLayout is the date format used when none is configured.
const DefaultDateLayout = "2006-01-02"

// Columns maps table headers to record fields. Only Text is required; the
// other columns are read when present in the header.
type Columns struct {
	ID         string
	Text       string
	Amount     string
	Date       string
	Label      string
	DateLayout string
	// Encoding of CSV input: utf-8 (default), windows-1250 or iso-8859-2.
	Encoding string
	// Comma is the CSV field delimiter, ',' when zero.
	Comma rune
}

// DefaultColumns returns the column names written by this package.
func DefaultColumns() Columns {
	return Columns{
		ID:         "id",
		Text:       "text",
		Amount:     "amount",
		Date:       "date",
		Label:      "label",
		DateLayout: DefaultDateLayout,
	}
}

type columnIndex struct {
	id, text, amount, date, label int
}

func (c Columns) index(header []string) (columnIndex, error) {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	idx := columnIndex{
		id:     find(c.ID),
		text:   find(c.Text),
		amount: find(c.Amount),
		date:   find(c.Date),
		label:  find(c.Label),
	}
	if idx.text < 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingColumn, c.Text)
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// toRecord maps one data row. line is the 1-based table row used in errors.
func (c Columns) toRecord(idx columnIndex, row []string, line int) (domain.RawRecord, error) {
	rec := domain.RawRecord{
		ID:    strings.TrimSpace(cell(row, idx.id)),
		Label: strings.TrimSpace(cell(row, idx.label)),
	}

	if text := cell(row, idx.text); text != "" {
		rec.Text = &text
	}

	if raw := strings.TrimSpace(cell(row, idx.amount)); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return rec, fmt.Errorf("%w at row %d: %q", ErrInvalidAmount, line, raw)
		}
		rec.Amount = decimal.NewNullDecimal(amount)
	}

	if raw := strings.TrimSpace(cell(row, idx.date)); raw != "" {
		layout := c.DateLayout
		if layout == "" {
			layout = DefaultDateLayout
		}
		date, err := time.Parse(layout, raw)
		if err != nil {
			return rec, fmt.Errorf("%w at row %d: %q", ErrInvalidDate, line, raw)
		}
		rec.Date = date
	}

	return rec.EnsureID(), nil
}

// parseAmount accepts "1234.56" and the decimal-comma form "1234,56".
func parseAmount(raw string) (decimal.Decimal, error) {
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	return decimal.NewFromString(raw)
}

// Header returns the output column names.
func Header(withFeatures bool) []string {
	h := []string{"id", "text", "normalized", "amount", "date", "label"}
	if withFeatures {
		h = append(h,
			"dt_date_str", "dt_month", "dt_month_txt", "dt_year",
			"dt_week_day", "dt_day_of_year", "dt_week_of_year", "trx_amount_bin",
		)
	}
	return h
}

// Row renders a normalized record in Header order. Missing values become empty cells.
func Row(rec domain.NormalizedRecord, withFeatures bool, dateLayout string) []string {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	row := []string{rec.ID, deref(rec.Text), deref(rec.Normalized), "", "", rec.Label}
	if rec.Amount.Valid {
		row[3] = rec.Amount.Decimal.String()
	}
	if rec.HasDate() {
		row[4] = rec.Date.Format(dateLayout)
	}

	if !withFeatures {
		return row
	}
	f := domain.Features{}
	if rec.Features != nil {
		f = *rec.Features
	}
	dateCols := []string{"", "", "", "", "", "", ""}
	if f.HasDate {
		dateCols = []string{
			f.DateString,
			strconv.Itoa(f.Month),
			f.MonthName,
			strconv.Itoa(f.Year),
			strconv.Itoa(f.WeekDay),
			strconv.Itoa(f.DayOfYear),
			strconv.Itoa(f.WeekOfYear),
		}
	}
	row = append(row, dateCols...)
	return append(row, f.AmountBin)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
