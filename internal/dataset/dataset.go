package dataset

import "example.com/healthreport/internal/calendar"

// Column maps keys to values for one rendered column. Keys are unique; order is irrelevant.
type Column[K comparable] struct {
	Header    string
	RangeName string
	Values    map[K]Value
}

// NewColumn constructs an empty column.
func NewColumn[K comparable](header, rangeName string) *Column[K] {
	return &Column[K]{Header: header, RangeName: rangeName, Values: make(map[K]Value)}
}

// Set stores v under k, replacing any previous value.
func (c *Column[K]) Set(k K, v Value) {
	c.Values[k] = v
}

// SetNumber stores a numeric value under k.
func (c *Column[K]) SetNumber(k K, f float64) {
	c.Values[k] = Number(f)
}

// Get looks up k.
func (c *Column[K]) Get(k K) (Value, bool) {
	v, ok := c.Values[k]
	return v, ok
}

// Len reports how many keys carry a value.
func (c *Column[K]) Len() int { return len(c.Values) }

// KeyColumn enumerates the canonical key set of a dataset, in display order.
type KeyColumn[K comparable] struct {
	Header string
	Keys   []K
	Format func(K) Value
}

// DayKeys builds a key column over calendar days.
func DayKeys(header string, days []calendar.Date) *KeyColumn[calendar.Date] {
	return &KeyColumn[calendar.Date]{Header: header, Keys: days, Format: DateValue}
}

// MonthKeys builds a key column over calendar months.
func MonthKeys(header string, months []calendar.YearMonth) *KeyColumn[calendar.YearMonth] {
	return &KeyColumn[calendar.YearMonth]{
		Header: header,
		Keys:   months,
		Format: func(m calendar.YearMonth) Value { return Text(m.String()) },
	}
}

// Dataset is an ordered set of sparse columns sharing a key space. Without a key column it is only a
// bag of columns; Join anchors it to a canonical key set.
type Dataset[K comparable] struct {
	Key     *KeyColumn[K]
	Columns []*Column[K]
}

// New constructs a dataset from columns.
func New[K comparable](columns ...*Column[K]) *Dataset[K] {
	return &Dataset[K]{Columns: columns}
}

// Add appends columns.
func (d *Dataset[K]) Add(columns ...*Column[K]) {
	d.Columns = append(d.Columns, columns...)
}

// Column finds a column by header.
func (d *Dataset[K]) Column(header string) (*Column[K], bool) {
	for _, c := range d.Columns {
		if c.Header == header {
			return c, true
		}
	}
	return nil, false
}

// Keys returns every key carried by any column, in no particular order.
func (d *Dataset[K]) Keys() []K {
	seen := make(map[K]struct{})
	keys := make([]K, 0)
	for _, c := range d.Columns {
		for k := range c.Values {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Join anchors the columns of every source to key. Every canonical key yields exactly one row; keys a
// source has no value for render as blank cells.
func Join[K comparable](key *KeyColumn[K], sources ...*Dataset[K]) *Dataset[K] {
	out := &Dataset[K]{Key: key}
	for _, src := range sources {
		if src == nil {
			continue
		}
		out.Columns = append(out.Columns, src.Columns...)
	}
	return out
}

// Describe lists the key column followed by every data column.
func (d *Dataset[K]) Describe() []ColumnInfo {
	cols := make([]ColumnInfo, 0, len(d.Columns)+1)
	if d.Key != nil {
		cols = append(cols, ColumnInfo{Header: d.Key.Header})
	}
	for _, c := range d.Columns {
		cols = append(cols, ColumnInfo{Header: c.Header, RangeName: c.RangeName})
	}
	return cols
}

// Rows materialises one row per canonical key. A dataset without a key column renders no rows.
func (d *Dataset[K]) Rows() []Row {
	if d.Key == nil {
		return nil
	}
	rows := make([]Row, 0, len(d.Key.Keys))
	for _, k := range d.Key.Keys {
		row := make(Row, 0, len(d.Columns)+1)
		row = append(row, Cell{Header: d.Key.Header, Value: d.Key.Format(k)})
		for _, c := range d.Columns {
			v, ok := c.Values[k]
			if !ok {
				v = Empty()
			}
			row = append(row, Cell{Header: c.Header, Value: v})
		}
		rows = append(rows, row)
	}
	return rows
}

// Empty reports whether no column has a value for any canonical key. Without a key column every
// stored value counts.
func (d *Dataset[K]) Empty() bool {
	for _, c := range d.Columns {
		if d.hasValue(c) {
			return false
		}
	}
	return true
}

// WithoutEmptyColumns returns a dataset sharing the key column and only the columns with data.
func (d *Dataset[K]) WithoutEmptyColumns() Source {
	out := &Dataset[K]{Key: d.Key}
	for _, c := range d.Columns {
		if d.hasValue(c) {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

func (d *Dataset[K]) hasValue(c *Column[K]) bool {
	if d.Key == nil {
		for _, v := range c.Values {
			if !v.IsEmpty() {
				return true
			}
		}
		return false
	}
	for _, k := range d.Key.Keys {
		if v, ok := c.Values[k]; ok && !v.IsEmpty() {
			return true
		}
	}
	return false
}
