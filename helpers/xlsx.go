package helpers

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/tally/engine"
	apperr "github.com/spektr-org/tally/internal/errors"
)

// ParseXLSX reads one worksheet of an Excel workbook. An empty sheet name
// selects the first sheet. Cells go through the same normalisation as CSV.
func ParseXLSX(r io.Reader, sheet string) (*engine.SliceView, LoadReport, error) {
	view, report, err := readXLSX(r, sheet)
	if err != nil {
		return nil, report, apperr.LoadFailed("XLSX input", err)
	}
	return view, report, nil
}

func readXLSX(r io.Reader, sheet string) (*engine.SliceView, LoadReport, error) {
	report := LoadReport{Format: FormatXLSX}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, report, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, report, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("sheet %q is empty", sheet)
	}

	view := buildView(rows[0], rows[1:], &report)
	return view, report, nil
}
