package table

import (
	"fmt"
	"io"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet written by WriteXLSX.
const DefaultSheet = "Sheet1"

// ReadXLSX reads records from a workbook. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string, cols Columns) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	idx, err := cols.index(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := cols.toRecord(idx, row, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteXLSX writes normalized records to a single-sheet workbook.
func WriteXLSX(w io.Writer, records []domain.NormalizedRecord, withFeatures bool, dateLayout string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := Header(withFeatures)
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return err
	}
	for i, rec := range records {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(rec, withFeatures, dateLayout)
		if err := f.SetSheetRow(DefaultSheet, cellName, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
