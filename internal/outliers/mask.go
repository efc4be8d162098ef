package outliers

// Mask flags outlier cells per target column. It is computed, consumed and
// discarded; it is never stored on a table.
type Mask struct {
	Columns []string
	Flags   map[string][]bool

	rows int
}

func newMask(rows int) Mask {
	return Mask{Flags: make(map[string][]bool), rows: rows}
}

func (m *Mask) set(column string, flags []bool) {
	if _, ok := m.Flags[column]; !ok {
		m.Columns = append(m.Columns, column)
	}
	m.Flags[column] = flags
}

// Rows reports, per row, whether any column flags it.
func (m Mask) Rows() []bool {
	out := make([]bool, m.rows)
	for _, flags := range m.Flags {
		for i, f := range flags {
			out[i] = out[i] || f
		}
	}
	return out
}

// Count returns the number of flagged cells in a column.
func (m Mask) Count(column string) int {
	n := 0
	for _, f := range m.Flags[column] {
		if f {
			n++
		}
	}
	return n
}

// Total returns the number of flagged rows.
func (m Mask) Total() int {
	n := 0
	for _, f := range m.Rows() {
		if f {
			n++
		}
	}
	return n
}

// Keep is the complement of Rows.
func (m Mask) Keep() []bool {
	keep := m.Rows()
	for i := range keep {
		keep[i] = !keep[i]
	}
	return keep
}
