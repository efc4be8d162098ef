package table

import (
	"fmt"
	"math"
	"strings"

	"goclean/domain/core"
)

// Table is an immutable, ordered set of equally long named columns.
//
// Every derivation (Select, Drop, Replace, FilterRows) returns a new Table
// with a fresh ID whose Parent is the receiver. Columns are immutable and
// therefore shared between a table and the tables derived from it.
type Table struct {
	id     core.TableID
	parent core.TableID
	cols   []*Column
	pos    map[string]int
	index  []int
	rows   int
}

// New builds a table from columns. Column names must be unique and all
// columns must have the same length. Row labels start at 0.
func New(cols ...*Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	index := make([]int, rows)
	for i := range index {
		index[i] = i
	}
	return build(core.NewTableID(), "", cols, index)
}

// MustNew is New for statically known tables; it panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func build(id, parent core.TableID, cols []*Column, index []int) (*Table, error) {
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		if c == nil {
			return nil, core.NewInvalidArgumentError("columns", fmt.Sprintf("column %d is nil", i))
		}
		if _, dup := pos[c.Name()]; dup {
			return nil, core.NewInvalidArgumentError("columns", fmt.Sprintf("duplicate column %q", c.Name()))
		}
		if c.Len() != len(index) {
			return nil, core.NewInvalidArgumentError("columns", fmt.Sprintf("column %q has %d rows, want %d", c.Name(), c.Len(), len(index)))
		}
		pos[c.Name()] = i
	}
	return &Table{
		id:     id,
		parent: parent,
		cols:   append([]*Column(nil), cols...),
		pos:    pos,
		index:  index,
		rows:   len(index),
	}, nil
}

// derive returns a child table; callers guarantee the column invariants.
func (t *Table) derive(cols []*Column, index []int) *Table {
	child, err := build(core.NewTableID(), t.id, cols, index)
	if err != nil {
		panic(err)
	}
	return child
}

// ID returns the identifier of this table value.
func (t *Table) ID() core.TableID { return t.id }

// Parent returns the ID of the table this one was derived from, empty for a
// table built with New.
func (t *Table) Parent() core.TableID { return t.parent }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Index returns a copy of the row labels. Row filters keep the labels of the
// surviving rows, so callers can map output rows back to input rows.
func (t *Table) Index() []int { return append([]int(nil), t.index...) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column { return append([]*Column(nil), t.cols...) }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.pos[name]
	return ok
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.pos[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return t.cols[i], nil
}

// Lookup resolves several names at once, failing on the first unknown name.
func (t *Table) Lookup(names ...string) ([]*Column, error) {
	out := make([]*Column, len(names))
	for i, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// NumericNames returns the names of integer and float columns in order.
func (t *Table) NumericNames() []string {
	var names []string
	for _, c := range t.cols {
		if c.DType().IsNumeric() {
			names = append(names, c.Name())
		}
	}
	return names
}

// Select returns a table holding only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols, err := t.Lookup(names...)
	if err != nil {
		return nil, err
	}
	return t.derive(cols, t.Index()), nil
}

// Drop returns a table without the named columns.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !t.HasColumn(name) {
			return nil, core.NewColumnNotFoundError(name)
		}
		drop[name] = struct{}{}
	}
	cols := make([]*Column, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := drop[c.Name()]; !ok {
			cols = append(cols, c)
		}
	}
	return t.derive(cols, t.Index()), nil
}

// Replace returns a table where each given column takes the place of the
// existing column with the same name.
func (t *Table) Replace(cols ...*Column) (*Table, error) {
	next := t.Columns()
	for _, c := range cols {
		i, ok := t.pos[c.Name()]
		if !ok {
			return nil, core.NewColumnNotFoundError(c.Name())
		}
		if c.Len() != t.rows {
			return nil, core.NewInvalidArgumentError(c.Name(), fmt.Sprintf("replacement has %d rows, want %d", c.Len(), t.rows))
		}
		next[i] = c
	}
	return t.derive(next, t.Index()), nil
}

// FilterRows returns the rows where keep is true, preserving their order and
// row labels.
func (t *Table) FilterRows(keep []bool) (*Table, error) {
	if len(keep) != t.rows {
		return nil, core.NewInvalidArgumentError("keep", fmt.Sprintf("mask has %d entries, want %d", len(keep), t.rows))
	}
	rows := make([]int, 0, t.rows)
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(rows)
	}
	index := make([]int, len(rows))
	for i, r := range rows {
		index[i] = t.index[r]
	}
	return t.derive(cols, index), nil
}

// MemoryUsage returns the deep memory estimate of all columns.
func (t *Table) MemoryUsage() int64 {
	var total int64
	for _, c := range t.cols {
		total += c.MemoryUsage()
	}
	return total
}

// Fingerprint hashes names, dtypes, levels, row labels and values. Two tables
// with the same content have the same fingerprint regardless of their IDs.
func (t *Table) Fingerprint() core.Hash {
	h := core.NewHasher()
	h.WriteUint64(uint64(t.rows))
	for _, label := range t.index {
		h.WriteUint64(uint64(label))
	}
	for _, c := range t.cols {
		h.WriteString(c.Name())
		h.WriteString(string(c.DType()))
		h.WriteString(fmt.Sprint(c.Ordered()))
		h.WriteString(strings.Join(c.levels, "\x00"))
		for i := 0; i < c.Len(); i++ {
			switch {
			case c.DType().IsNumeric():
				v := c.Float(i)
				if math.IsNaN(v) {
					v = math.NaN()
				}
				h.WriteUint64(math.Float64bits(v))
			default:
				h.WriteString(fmt.Sprintf("%T:%v", c.Value(i), c.Value(i)))
			}
		}
	}
	return h.Sum()
}

// String renders a small plain-text view of the table, one row per line.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Names(), "\t"))
	for r := 0; r < t.rows; r++ {
		b.WriteByte('\n')
		for i, c := range t.cols {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(c.String(r))
		}
	}
	return b.String()
}
