// Package tally filters and counts a table of contest submissions.
//
// Usage:
//
//	import "github.com/spektr-org/tally/engine"
//
//	result, err := engine.Execute(view, engine.Request{
//	    Filters:       engine.NewFilters(map[string][]string{"회사": {"A사"}}),
//	    CountColumns:  []string{"회사", "난이도"},
//	    KeywordColumn: "제목",
//	})
//
// The engine works on any RecordView (a loaded CSV or XLSX sheet, or a
// slice of domain structs through DomainAdapter) and returns frequency
// tables, cross counts and title keywords ready for the builders in the
// same package. It performs no I/O.
//
// Loading lives in helpers, column roles in schema, and the dashboard in ui.
// The tally command serves the dashboard and prints the same counts.
package tally
