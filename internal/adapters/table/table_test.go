package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCSV(t *testing.T) {
	input := "ID,Description,Amount,Date,Label\n" +
		"a1,\"AMAZON.COM, Store\",12.50,2024-03-04,shopping\n" +
		"a2,,\"1234,56\",,\n" +
		"a3,ATM A3122001 withdrawal,,,cash\n"

	cols := DefaultColumns()
	cols.Text = "description"
	records, err := ReadCSV(strings.NewReader(input), cols)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "a1" || first.Text == nil || *first.Text != "AMAZON.COM, Store" || first.Label != "shopping" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if !first.Amount.Valid || !first.Amount.Decimal.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected amount: %v", first.Amount)
	}
	if !first.Date.Equal(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date: %v", first.Date)
	}

	second := records[1]
	if second.Text != nil {
		t.Errorf("expected empty text cell to be nil, got %q", *second.Text)
	}
	if !second.Amount.Decimal.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("expected decimal comma amount, got %v", second.Amount)
	}
	if second.HasDate() {
		t.Error("expected no date")
	}
	if records[2].Amount.Valid {
		t.Error("expected no amount")
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmptyTable},
		{"missing text column", "id,amount\n1,2\n", ErrMissingColumn},
		{"bad amount", "text,amount\nx,abc\n", ErrInvalidAmount},
		{"bad date", "text,date\nx,04.03.2024\n", ErrInvalidDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.input), DefaultColumns())
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadCSVWindows1250(t *testing.T) {
	encoded, err := charmap.Windows1250.NewEncoder().String("text;label\nPlaćanje Kaufland;hrana\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cols := DefaultColumns()
	cols.Encoding = "windows-1250"
	cols.Comma = ';'
	records, err := ReadCSV(strings.NewReader(encoded), cols)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := *records[0].Text; got != "Plaćanje Kaufland" {
		t.Errorf("expected decoded text, got %q", got)
	}
	if records[0].ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestDecodeReaderUnknownEncoding(t *testing.T) {
	if _, err := DecodeReader(strings.NewReader(""), "ebcdic"); err == nil {
		t.Error("expected an error")
	}
}

func normalizedSample() []domain.NormalizedRecord {
	text := "AMAZON.COM**"
	normalized := "AMAZON"
	rec := domain.NormalizedRecord{
		RawRecord: domain.RawRecord{
			ID:     "r1",
			Text:   &text,
			Amount: decimal.NewNullDecimal(decimal.RequireFromString("72.40")),
			Date:   time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			Label:  "shopping",
		},
		Normalized: &normalized,
		Features: &domain.Features{
			DateString: "March 04 2024", Month: 3, MonthName: "March", Year: 2024,
			WeekDay: 1, DayOfYear: 64, WeekOfYear: 10, AmountBin: "medium",
			HasDate: true, HasAmountBin: true,
		},
	}
	missing := domain.NormalizedRecord{RawRecord: domain.RawRecord{ID: "r2"}}
	return []domain.NormalizedRecord{rec, missing}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, normalizedSample(), true, ""); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []string{"r1", "AMAZON.COM**", "AMAZON", "72.4", "2024-03-04", "shopping",
		"March 04 2024", "3", "March", "2024", "1", "64", "10", "medium"}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Errorf("unexpected row:\n got %v\nwant %v", rows[1], want)
	}
	if rows[2][2] != "" || rows[2][13] != "" {
		t.Errorf("expected empty cells for missing values, got %v", rows[2])
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, normalizedSample(), false, ""); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	records, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "", DefaultColumns())
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "r1" || records[0].Text == nil || *records[0].Text != "AMAZON.COM**" {
		t.Errorf("unexpected record: %+v", records[0])
	}
	if !records[0].Amount.Decimal.Equal(decimal.RequireFromString("72.4")) {
		t.Errorf("unexpected amount: %v", records[0].Amount)
	}
	if records[1].Text != nil {
		t.Error("expected nil text for the empty cell")
	}
}
