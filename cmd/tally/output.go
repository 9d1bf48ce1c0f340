package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tally/engine"
	"github.com/spektr-org/tally/helpers"
	apperr "github.com/spektr-org/tally/internal/errors"
)

// ============================================================================
// OUTPUT TYPES
// ============================================================================

type summaryOutput struct {
	File    string             `json:"file"`
	Roles   map[string]string  `json:"roles"` // role → header
	Request engine.Request     `json:"request"`
	Result  *engine.Result     `json:"result"`
	Report  helpers.LoadReport `json:"report"`
	Rows    *engine.TableData  `json:"rows,omitempty"`
}

// withOutput runs fn against stdout or the file named by out.
func withOutput(cmd *cobra.Command, out string, fn func(w io.Writer) error) error {
	if out == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(out)
	if err != nil {
		return apperr.Wrapf(err, "failed to create output file %s", out)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ============================================================================
// CSV OUTPUT: Sheets-ready long format
// ============================================================================

// writeCSV writes the matching rows when they were requested, otherwise one
// (table, value, count) line per frequency, cross-tab cell and keyword.
func writeCSV(w io.Writer, out summaryOutput) error {
	cw := csv.NewWriter(w)

	if out.Rows != nil {
		writeTableCSV(cw, out.Rows)
	} else {
		writeCountsCSV(cw, out.Result)
	}

	cw.Flush()
	return cw.Error()
}

func writeCountsCSV(cw *csv.Writer, result *engine.Result) {
	cw.Write([]string{"table", "value", "count"})
	for _, fc := range result.Frequencies {
		for _, f := range fc.Table {
			cw.Write([]string{fc.Column, f.Value, strconv.Itoa(f.Count)})
		}
	}
	for _, g := range result.Cross {
		for _, sg := range g.SubGroups {
			cw.Write([]string{"cross", g.Key + " / " + sg.Key, strconv.Itoa(sg.Count)})
		}
	}
	for _, k := range result.Keywords {
		cw.Write([]string{"keywords", k.Token, strconv.Itoa(k.Count)})
	}
}

func writeTableCSV(cw *csv.Writer, table *engine.TableData) {
	headers := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		headers = append(headers, col.Label)
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeText(w io.Writer, out summaryOutput) error {
	r := out.Result
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s of %s rows\n", out.File, engine.FormatInt(r.Rows), engine.FormatInt(r.TotalRows))
	if r.Empty {
		if r.Summary != nil && r.Summary.Message != "" {
			fmt.Fprintln(&b, r.Summary.Message)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, fc := range r.Frequencies {
		parts := make([]string, 0, len(fc.Table))
		for _, f := range fc.Table {
			parts = append(parts, fmt.Sprintf("%s %d", f.Value, f.Count))
		}
		fmt.Fprintf(&b, "%s: %s\n", fc.Column, strings.Join(parts, ", "))
	}

	if len(r.Cross) > 0 {
		fmt.Fprintf(&b, "%s × %s:\n", out.Request.Cross.RowColumn, out.Request.Cross.SeriesColumn)
		for _, g := range r.Cross {
			parts := make([]string, 0, len(g.SubGroups))
			for _, sg := range g.SubGroups {
				parts = append(parts, fmt.Sprintf("%s %d", sg.Key, sg.Count))
			}
			fmt.Fprintf(&b, "  %s (%d): %s\n", g.Key, g.Count, strings.Join(parts, ", "))
		}
	}

	if len(r.Keywords) > 0 {
		parts := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			parts = append(parts, fmt.Sprintf("%s %d", k.Token, k.Count))
		}
		fmt.Fprintf(&b, "keywords: %s\n", strings.Join(parts, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return apperr.Wrap(err, "failed to marshal output")
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

// schemaName derives a schema name from a file name.
func schemaName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
