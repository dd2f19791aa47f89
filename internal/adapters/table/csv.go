package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
)

// ReadCSV reads records from a CSV table with a header row.
func ReadCSV(r io.Reader, cols Columns) ([]domain.RawRecord, error) {
	decoded, err := DecodeReader(r, cols.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	if cols.Comma != 0 {
		cr.Comma = cols.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	idx, err := cols.index(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", line, err)
		}
		rec, err := cols.toRecord(idx, row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV writes normalized records with a header row.
func WriteCSV(w io.Writer, records []domain.NormalizedRecord, withFeatures bool, dateLayout string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(withFeatures)); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec, withFeatures, dateLayout)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
