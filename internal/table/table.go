package table

import "fmt"

// Cell is a single table value. The zero Cell is Null, the "no value"
// sentinel, which is distinct from a cell holding "0" or "".
type Cell struct {
	text  string
	valid bool
}

// Null is the absent value.
var Null = Cell{}

// Text returns a cell holding s verbatim.
func Text(s string) Cell { return Cell{text: s, valid: true} }

func (c Cell) Valid() bool { return c.valid }

// String returns the cell text, or "" for Null.
func (c Cell) String() string { return c.text }

// Table is an in-memory, row-oriented table with named columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
	lines   []int // source line per row, nil when not read from a file
}

// New returns an empty table with the given columns. Column names must be
// unique.
func New(columns ...string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; dup {
			panic(fmt.Sprintf("table: duplicate column %q", c))
		}
		t.index[c] = i
	}
	return t
}

// FromRows builds a table from already materialized rows. Every row must be
// exactly as wide as columns. The rows slice is owned by the table afterwards.
func FromRows(columns []string, rows [][]Cell) *Table {
	t := New(columns...)
	for i, r := range rows {
		if len(r) != len(t.columns) {
			panic(fmt.Sprintf("table: row %d has %d cells, want %d", i, len(r), len(t.columns)))
		}
	}
	t.rows = rows
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

func (t *Table) Width() int { return len(t.columns) }

func (t *Table) Len() int { return len(t.rows) }

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Append adds one row. It panics if the row width does not match.
func (t *Table) Append(cells ...Cell) {
	if len(cells) != len(t.columns) {
		panic(fmt.Sprintf("table: append %d cells, want %d", len(cells), len(t.columns)))
	}
	t.rows = append(t.rows, append([]Cell(nil), cells...))
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell { return append([]Cell(nil), t.rows[i]...) }

// Record returns a name-keyed view of row i.
func (t *Table) Record(i int) Record { return Record{t: t, i: i} }

// Record is a read-only view of one table row addressed by column name.
type Record struct {
	t *Table
	i int
}

// Get returns the named cell. ok is false when the table has no such column,
// which is different from the column being present with a Null value.
func (r Record) Get(name string) (c Cell, ok bool) {
	j, ok := r.t.index[name]
	if !ok {
		return Null, false
	}
	return r.t.rows[r.i][j], true
}

// Line is the 1-based source line of the row. For tables that were not read
// from a source, the header is assumed to be line 1 with no blank lines.
func (r Record) Line() int {
	if r.t.lines != nil {
		return r.t.lines[r.i]
	}
	return r.i + 2
}
