package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/spektr-org/tally/engine"
	apperr "github.com/spektr-org/tally/internal/errors"
	"github.com/spektr-org/tally/schema"
)

// ============================================================================
// CSV HELPER: Parses CSV data into an engine.SliceView
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, upload, URL).
// This helper converts the raw bytes into Records keyed by the real headers.
// Null tokens never reach a Record: a missing value is an absent key.
// ============================================================================

// LoadReport describes what a loader did with its input.
type LoadReport struct {
	Source       string   `json:"source"`
	Format       Format   `json:"format"`
	Rows         int      `json:"rows"`
	Columns      []string `json:"columns"`
	SkippedRows  int      `json:"skippedRows"`  // malformed rows dropped
	PaddedRows   int      `json:"paddedRows"`   // short rows filled with missing
	MissingCells int      `json:"missingCells"` // empty or null-token cells
}

// ParseCSV reads a header row followed by data rows. A UTF-8 BOM is
// stripped, headers and values are trimmed and NFC-normalised, ragged rows
// are padded with missing values and rows with broken quoting are skipped.
func ParseCSV(r io.Reader) (*engine.SliceView, LoadReport, error) {
	view, report, err := readCSV(r)
	if err != nil {
		return nil, report, apperr.LoadFailed("CSV input", err)
	}
	return view, report, nil
}

func readCSV(r io.Reader) (*engine.SliceView, LoadReport, error) {
	report := LoadReport{Format: FormatCSV}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, report, errors.New("input is empty")
	}
	if err != nil {
		return nil, report, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.SkippedRows++
				continue // skip malformed rows
			}
			return nil, report, err
		}
		rows = append(rows, row)
	}

	view := buildView(headers, rows, &report)
	return view, report, nil
}

// buildView turns raw header and data rows into a SliceView whose column
// order is the header order.
func buildView(rawHeaders []string, rows [][]string, report *LoadReport) *engine.SliceView {
	headers := normalizeHeaders(rawHeaders)

	records := make([]engine.Record, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(headers) {
			report.PaddedRows++
		}
		rec := engine.Record{Values: make(map[string]string, len(headers))}
		for i, h := range headers {
			if i >= len(row) {
				report.MissingCells++
				continue
			}
			val, ok := normalizeCell(row[i])
			if !ok {
				report.MissingCells++
				continue
			}
			rec.Values[h] = val
		}
		records = append(records, rec)
	}

	report.Rows = len(records)
	report.Columns = headers
	return engine.NewSliceView(records, headers...)
}

// normalizeHeaders trims and NFC-normalises headers. Blank headers become
// "Unnamed: N" and repeated headers get a ".N" suffix so every column keeps
// a distinct name.
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(norm.NFC.String(h))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		}
		seen[h] = 0
		headers[i] = h
	}
	return headers
}

// normalizeCell returns the cleaned value and whether it is present.
func normalizeCell(s string) (string, bool) {
	s = strings.TrimSpace(norm.NFC.String(s))
	if schema.IsNullToken(s) {
		return "", false
	}
	return s, true
}
