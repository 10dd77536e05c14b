// Package datatable is the server-side table component behind the admin pages.
//
// A Table holds rows of rendered cells and decides which of them are visible: every
// registered RowPredicate must accept a row, the global search must match one of its
// cells, and the survivors are ordered. Redraw re-evaluates all of this on demand and
// hands the result to the draw observers.
package datatable

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"admin_dashboard/internal/cell"
)

// Row is the list of cell values of one table row, indexed by column position.
type Row []string

// RowPredicate decides whether a row is displayed.
type RowPredicate func(row Row) bool

// ColumnType selects how a column is searched and ordered.
type ColumnType int

// Supported column types.
const (
	// ColumnText cells are plain text.
	ColumnText ColumnType = iota
	// ColumnHTML cells are HTML fragments; search and order use their text.
	ColumnHTML
	// ColumnSelect cells hold a <select>; order uses the selected option's value.
	ColumnSelect
)

// Column describes one table column.
type Column struct {
	Title string
	Type  ColumnType
	// Selector picks the select element of a ColumnSelect cell.
	Selector string
}

// SearchText returns the text of value matched by searches.
func (c Column) SearchText(value string) string {
	if c.Type == ColumnText {
		return value
	}
	return cell.Text(value)
}

// OrderValue returns the key value is ordered by.
func (c Column) OrderValue(value string) string {
	if c.Type == ColumnSelect {
		selector := c.Selector
		if selector == "" {
			selector = "select"
		}
		return cell.SelectedValue(value, selector)
	}
	return c.SearchText(value)
}

// Order sorts the table by one column.
type Order struct {
	Column int
	Desc   bool
}

// Table holds the rows of one admin page.
type Table struct {
	mu         sync.Mutex
	columns    []Column
	rows       []Row
	predicates []RowPredicate
	search     string
	order      []Order
	observers  []func(visible []Row)
	visible    []Row
}

// New creates a table over rows.
func New(columns []Column, rows []Row) *Table {
	return &Table{columns: columns, rows: rows}
}

// Columns returns the column definitions.
func (t *Table) Columns() []Column {
	return t.columns
}

// Len returns the total number of rows, ignoring filters.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// SetRows replaces the table data. Call Redraw to refresh the visible rows.
func (t *Table) SetRows(rows []Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = rows
}

// RegisterRowPredicate adds a predicate every visible row must satisfy.
func (t *Table) RegisterRowPredicate(p RowPredicate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.predicates = append(t.predicates, p)
}

// Search sets the global search term. An empty term matches every row.
func (t *Table) Search(term string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = strings.ToLower(strings.TrimSpace(term))
}

// ColumnSearch restricts the table to rows whose column col contains term.
func (t *Table) ColumnSearch(col int, term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || col < 0 || col >= len(t.columns) {
		return
	}
	column := t.columns[col]
	t.RegisterRowPredicate(func(row Row) bool {
		if col >= len(row) {
			return false
		}
		return strings.Contains(strings.ToLower(column.SearchText(row[col])), term)
	})
}

// OrderBy sets the sort order, most significant first. Out-of-range columns are ignored.
func (t *Table) OrderBy(orders ...Order) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = t.order[:0]
	for _, o := range orders {
		if o.Column >= 0 && o.Column < len(t.columns) {
			t.order = append(t.order, o)
		}
	}
}

// OnDraw registers fn to receive the visible rows after every redraw.
func (t *Table) OnDraw(fn func(visible []Row)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Visible returns the rows produced by the latest redraw.
func (t *Table) Visible() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Redraw re-evaluates every row and notifies the draw observers.
func (t *Table) Redraw() []Row {
	t.mu.Lock()
	visible := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		if t.accepts(row) {
			visible = append(visible, row)
		}
	}
	t.sort(visible)
	t.visible = visible
	observers := slices.Clone(t.observers)
	t.mu.Unlock()

	for _, fn := range observers {
		fn(visible)
	}
	return visible
}

func (t *Table) accepts(row Row) bool {
	for _, p := range t.predicates {
		if !p(row) {
			return false
		}
	}
	if t.search == "" {
		return true
	}
	for i, v := range row {
		text := v
		if i < len(t.columns) {
			text = t.columns[i].SearchText(v)
		}
		if strings.Contains(strings.ToLower(text), t.search) {
			return true
		}
	}
	return false
}

func (t *Table) sort(rows []Row) {
	if len(t.order) == 0 {
		return
	}

	type keyed struct {
		row  Row
		keys []string
	}
	items := make([]keyed, len(rows))
	for i, row := range rows {
		keys := make([]string, len(t.order))
		for j, o := range t.order {
			keys[j] = t.columns[o.Column].OrderValue(at(row, o.Column))
		}
		items[i] = keyed{row: row, keys: keys}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		for j, o := range t.order {
			c := compareValues(a.keys[j], b.keys[j])
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	for i := range items {
		rows[i] = items[i].row
	}
}

func at(row Row, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// compareValues orders numbers numerically and everything else lexically.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(strings.ReplaceAll(a, ",", ""), 64)
	fb, errB := strconv.ParseFloat(strings.ReplaceAll(b, ",", ""), 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
