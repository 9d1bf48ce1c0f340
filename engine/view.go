package engine

// ============================================================================
// RECORD VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns or mutates the dataset. It reads through this
// interface.
//
// Implementations:
//   SliceView      wraps []Record with an explicit column schema
//   DomainView[T]  reads typed structs via accessor functions (zero-copy)
//   SubView        filtered subset (indices into parent, zero-copy)
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Value in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	// Value returns the value at row i for a column; ok is false when the
	// value is missing.
	Value(i int, column string) (value string, ok bool)
	// Columns returns the schema in display order.
	Columns() []string
}

// HasColumn reports whether a view's schema contains column.
func HasColumn(view RecordView, column string) bool {
	for _, c := range view.Columns() {
		if c == column {
			return true
		}
	}
	return false
}

// ============================================================================
// SLICE VIEW: wraps []Record
// ============================================================================

// SliceView wraps a []Record slice as a RecordView.
// Used by helpers.ParseCSV and ad-hoc consumers.
type SliceView struct {
	records []Record
	columns []string
}

// NewSliceView creates a RecordView from records and an explicit schema.
// When columns is empty the schema is the union of record keys in first-seen
// order (map iteration inside a record is sorted for determinism).
func NewSliceView(records []Record, columns ...string) *SliceView {
	v := &SliceView{records: records, columns: columns}
	if len(v.columns) == 0 {
		v.cacheColumns()
	}
	return v
}

func (v *SliceView) cacheColumns() {
	seen := make(map[string]bool)
	for _, r := range v.records {
		for _, k := range sortedKeys(r.Values) {
			if !seen[k] {
				seen[k] = true
				v.columns = append(v.columns, k)
			}
		}
	}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Value(i int, column string) (string, bool) {
	if i < 0 || i >= len(v.records) {
		return "", false
	}
	return v.records[i].Get(column)
}

func (v *SliceView) Columns() []string { return v.columns }

// Records returns the underlying rows. Callers must not modify them.
func (v *SliceView) Records() []Record { return v.records }

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent; no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, column string) (string, bool) {
	if i < 0 || i >= len(v.indices) {
		return "", false
	}
	return v.parent.Value(v.indices[i], column)
}

func (v *SubView) Columns() []string { return v.parent.Columns() }

// ============================================================================
// DOMAIN ADAPTER: Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Submission]().
//	    Column("회사", func(s Submission) (string, bool) { return s.Company, s.Company != "" }).
//	    Column("주제", func(s Submission) (string, bool) { return s.Topic, true })
//
//	view := adapter.Bind(submissions)
//	result, _ := engine.Execute(view, req)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	order []string
	cols  map[string]func(T) (string, bool)
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		cols: make(map[string]func(T) (string, bool)),
	}
}

// Column registers a column accessor.
func (a *DomainAdapter[T]) Column(key string, fn func(T) (string, bool)) *DomainAdapter[T] {
	if _, exists := a.cols[key]; !exists {
		a.order = append(a.order, key)
	}
	a.cols[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy; holds reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:    data,
		cols:    a.cols,
		columns: a.order,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data    []T
	cols    map[string]func(T) (string, bool)
	columns []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Value(i int, column string) (string, bool) {
	if i < 0 || i >= len(v.data) {
		return "", false
	}
	if fn, ok := v.cols[column]; ok {
		return fn(v.data[i])
	}
	return "", false
}

func (v *DomainView[T]) Columns() []string { return v.columns }
