package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/tally/engine"
	"github.com/spektr-org/tally/helpers"
	apperr "github.com/spektr-org/tally/internal/errors"
	"github.com/spektr-org/tally/schema"
	"github.com/spektr-org/tally/ui"
)

// ============================================================================
// SUMMARY: the dashboard's counts for one file, on stdout
// ============================================================================

type summaryOptions struct {
	filters    []string // role=value, repeatable
	search     string
	by         string
	keywords   int
	top        int
	sort       string
	schemaFile string
	sheet      string
	rows       bool
	format     string
	out        string
}

func newSummaryCmd(c *cli) *cobra.Command {
	opts := summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Print filtered counts and keywords for a CSV or XLSX file",
		Example: `  tally summary submissions.csv --filter company=A사 --filter level=상
  tally summary submissions.xlsx --by category --format pretty
  tally summary submissions.csv --search 검출 --rows --format csv --out rows.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(cmd, opts.out, func(w io.Writer) error {
				return c.summary(w, args[0], opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.filters, "filter", "f", nil, "Keep rows where role equals value (role=value, repeatable)")
	f.StringVarP(&opts.search, "search", "q", "", "Case-insensitive substring search on the title column")
	f.StringVar(&opts.by, "by", "", "Cross-tabulate company against this role")
	f.IntVar(&opts.keywords, "keywords", 0, "Number of title keywords (default from config)")
	f.IntVar(&opts.top, "top", 0, "Keep only the N largest groups per table")
	f.StringVar(&opts.sort, "sort", "", "Table order: count_desc, count_asc, label_asc, label_desc")
	f.StringVar(&opts.schemaFile, "schema", "", "Schema YAML file (default: built-in contest schema)")
	f.StringVar(&opts.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	f.BoolVar(&opts.rows, "rows", false, "Include the matching rows")
	f.StringVar(&opts.format, "format", "json", "Output format: json, pretty, text, csv")
	f.StringVarP(&opts.out, "out", "o", "", "Write output to file instead of stdout")
	return cmd
}

func (c *cli) summary(w io.Writer, path string, opts summaryOptions) error {
	ds, err := c.loadDataset(path, opts.schemaFile, opts.sheet)
	if err != nil {
		return err
	}

	state := ui.State{
		View:         ui.ViewOverview,
		Selection:    make(map[string][]string),
		Query:        strings.TrimSpace(opts.search),
		KeywordLimit: opts.keywords,
	}
	if opts.by != "" {
		state.View = ui.ViewCrosstab
		state.SeriesRole = opts.by
	}
	for _, f := range opts.filters {
		role, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(role) == "" {
			return apperr.InvalidInput("filter must be role=value: " + f)
		}
		role = strings.TrimSpace(role)
		state.Selection[role] = append(state.Selection[role], strings.TrimSpace(value))
	}

	req := ui.Request(state, ds.Mapping)
	engineOpts := []engine.Option{
		engine.WithLogger(c.logger.Named("engine")),
		engine.WithKeywordLimit(c.cfg.Engine.KeywordLimit),
	}
	top := opts.top
	if top == 0 {
		top = c.cfg.Engine.TopN
	}
	if top > 0 {
		engineOpts = append(engineOpts, engine.WithTopN(top))
	}
	if opts.sort != "" {
		engineOpts = append(engineOpts, engine.WithSort(opts.sort))
	}

	result, err := engine.Execute(ds.View, req, engineOpts...)
	if err != nil {
		return err
	}
	c.logger.Debug("summary computed",
		zap.String("file", path),
		zap.Int("rows", result.Rows),
		zap.Int("total", result.TotalRows))

	out := summaryOutput{
		File:    path,
		Roles:   roleHeaders(ds.Mapping),
		Request: req,
		Result:  result,
		Report:  ds.Report,
	}
	if opts.rows {
		out.Rows = engine.BuildSubsetTable("rows", result.Subset, ds.Mapping.Headers(ds.Mapping.All()...),
			ds.Mapping.Headers(ds.Mapping.Roles(schema.KindLink)...)...)
	}

	switch opts.format {
	case "csv":
		return writeCSV(w, out)
	case "text":
		return writeText(w, out)
	case "json", "pretty":
		return writeJSON(w, out, opts.format)
	default:
		return apperr.InvalidInput("unknown format " + opts.format)
	}
}

// loadDataset reads path as CSV or XLSX and binds it to the schema.
func (c *cli) loadDataset(path, schemaFile, sheet string) (*helpers.Dataset, error) {
	var sch *schema.Config
	if schemaFile != "" {
		var err error
		if sch, err = schema.LoadFile(schemaFile); err != nil {
			return nil, err
		}
	}

	view, report, err := readTable(path, sheet)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("dataset read",
		zap.String("file", path),
		zap.String("format", string(report.Format)),
		zap.Int("rows", report.Rows),
		zap.Int("skipped_rows", report.SkippedRows))

	return helpers.Bind(view, report, sch)
}

func readTable(path, sheet string) (*engine.SliceView, helpers.LoadReport, error) {
	if sheet == "" {
		return helpers.LoadFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, helpers.LoadReport{}, apperr.LoadFailed(path, err)
	}
	defer f.Close()
	view, report, err := helpers.ParseXLSX(f, sheet)
	report.Source = path
	return view, report, err
}

func roleHeaders(m *schema.Mapping) map[string]string {
	roles := make(map[string]string)
	for _, role := range m.All() {
		h, _ := m.Column(role)
		roles[role] = h
	}
	return roles
}

// ============================================================================
// DISCOVER: propose a schema from a file's headers and values
// ============================================================================

func newDiscoverCmd(c *cli) *cobra.Command {
	var (
		name        string
		sheet       string
		recoverCols []string
		format      string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "discover FILE",
		Short: "Print a schema inferred from a CSV or XLSX file",
		Long: `Inspect a file and print a schema that tally can load with --schema.
Known contest headers keep their built-in roles; other columns are
classified as categorical, text or link, and the rest are listed as
skipped with a reason.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := schema.DefaultDiscoverOptions()
			opts.Name = name
			opts.RecoverColumns = recoverCols
			return withOutput(cmd, out, func(w io.Writer) error {
				return c.discover(w, args[0], sheet, format, opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Schema name (default: derived from the file)")
	f.StringVar(&sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	f.StringSliceVar(&recoverCols, "recover", nil, "Skipped columns to keep as categorical")
	f.StringVar(&format, "format", "yaml", "Output format: yaml, json, pretty")
	f.StringVarP(&out, "out", "o", "", "Write output to file instead of stdout")
	return cmd
}

func (c *cli) discover(w io.Writer, path, sheet, format string, opts schema.DiscoverOptions) error {
	var (
		cfg *schema.Config
		err error
	)
	if helpers.DetectFormat(path, "") == helpers.FormatXLSX || sheet != "" {
		var view *engine.SliceView
		if view, _, err = readTable(path, sheet); err != nil {
			return err
		}
		if cfg, err = schema.DiscoverFromRows(view.Columns(), viewRows(view), opts); err == nil {
			cfg.DiscoveredFrom = "XLSX"
		}
	} else {
		var data []byte
		if data, err = os.ReadFile(path); err != nil {
			return apperr.LoadFailed(path, err)
		}
		cfg, err = schema.DiscoverFromCSV(data, opts)
	}
	if err != nil {
		return err
	}
	if opts.Name == "" {
		cfg.Name = schemaName(path)
	}

	c.logger.Info("schema discovered",
		zap.String("file", path),
		zap.Int("columns", len(cfg.Columns)),
		zap.Int("skipped", len(cfg.SkippedColumns)))

	switch format {
	case "yaml":
		data, err := schema.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "json", "pretty":
		return writeJSON(w, cfg, format)
	default:
		return apperr.InvalidInput("unknown format " + format)
	}
}

// viewRows flattens a view back into string rows; missing values are "".
func viewRows(view engine.RecordView) [][]string {
	cols := view.Columns()
	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j], _ = view.Value(i, col)
		}
		rows = append(rows, row)
	}
	return rows
}
