package dataset

// Cell pairs a header with its value.
type Cell struct {
	Header string
	Value  Value
}

// Row is an ordered list of cells. Rows of one table share the same headers.
type Row []Cell

// Get looks a cell up by header.
func (r Row) Get(header string) (Value, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return Value{}, false
}

// ColumnInfo describes one rendered column.
type ColumnInfo struct {
	Header    string
	RangeName string
}

// Source is anything a sheet can be rendered from.
type Source interface {
	Describe() []ColumnInfo
	Rows() []Row
	Empty() bool
	WithoutEmptyColumns() Source
}

// Table is a flat list of structurally identical rows, used for raw event sheets.
type Table []Row

// Describe returns the headers of the first row.
func (t Table) Describe() []ColumnInfo {
	if len(t) == 0 {
		return nil
	}
	cols := make([]ColumnInfo, 0, len(t[0]))
	for _, c := range t[0] {
		cols = append(cols, ColumnInfo{Header: c.Header})
	}
	return cols
}

// Rows returns the table itself.
func (t Table) Rows() []Row { return t }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t) == 0 }

// WithoutEmptyColumns drops columns that are blank in every row.
func (t Table) WithoutEmptyColumns() Source {
	if len(t) == 0 {
		return t
	}
	keep := make([]bool, len(t[0]))
	for _, row := range t {
		for i, c := range row {
			if i < len(keep) && !c.Value.IsEmpty() {
				keep[i] = true
			}
		}
	}
	out := make(Table, 0, len(t))
	for _, row := range t {
		trimmed := make(Row, 0, len(row))
		for i, c := range row {
			if i < len(keep) && keep[i] {
				trimmed = append(trimmed, c)
			}
		}
		out = append(out, trimmed)
	}
	return out
}
