package helpers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/tally/engine"
	apperr "github.com/spektr-org/tally/internal/errors"
	"github.com/spektr-org/tally/schema"
)

// Format is a supported dataset encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks a format from a file name and an optional MIME type.
// Anything unrecognised is read as CSV.
func DetectFormat(name, contentType string) Format {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch {
			case strings.Contains(mt, "spreadsheetml"):
				return FormatXLSX
			case mt == "text/csv":
				return FormatCSV
			}
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatCSV
}

// Parse decodes r in the given format. Failures are LOAD_FAILED errors
// naming source.
func Parse(r io.Reader, format Format, source string) (*engine.SliceView, LoadReport, error) {
	var (
		view   *engine.SliceView
		report LoadReport
		err    error
	)
	switch format {
	case FormatXLSX:
		view, report, err = readXLSX(r, "")
	case FormatCSV:
		view, report, err = readCSV(r)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	report.Source = source
	if err != nil {
		return nil, report, apperr.LoadFailed(source, err)
	}
	return view, report, nil
}

// LoadFile reads a dataset from disk, choosing the format by extension.
func LoadFile(path string) (*engine.SliceView, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{Source: path}, apperr.LoadFailed(path, err)
	}
	defer f.Close()
	return Parse(f, DetectFormat(path, ""), path)
}

// Load reads source from an http(s) URL or a local path.
func Load(ctx context.Context, client *http.Client, source string) (*engine.SliceView, LoadReport, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return Fetch(ctx, client, source)
	}
	return LoadFile(source)
}

// Validate checks that every header the mapping binds is a column of view.
func Validate(view engine.RecordView, m *schema.Mapping) error {
	for _, role := range m.All() {
		h, _ := m.Column(role)
		if !engine.HasColumn(view, h) {
			return apperr.New(apperr.CodeConfigInvalid,
				fmt.Sprintf("column %q for role %q is not in the dataset", h, role))
		}
	}
	return nil
}

// ============================================================================
// DATASET: a loaded view bound to its schema mapping
// ============================================================================

// Dataset is what the dashboard and the CLI work on.
type Dataset struct {
	View    *engine.SliceView
	Mapping *schema.Mapping
	Report  LoadReport
}

// Bind resolves cfg against the view's headers and validates the result.
func Bind(view *engine.SliceView, report LoadReport, cfg *schema.Config) (*Dataset, error) {
	m, err := schema.Resolve(cfg, view.Columns())
	if err != nil {
		return nil, err
	}
	if err := Validate(view, m); err != nil {
		return nil, err
	}
	return &Dataset{View: view, Mapping: m, Report: report}, nil
}

// Column returns the header bound to role, or role itself when unbound so
// the engine reports it as an invalid column.
func (d *Dataset) Column(role string) string {
	if h, ok := d.Mapping.Column(role); ok {
		return h
	}
	return role
}
