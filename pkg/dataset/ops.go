package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Structural operations used by the cleaning steps. Every operation leaves the
// frame consistent: columns share one length and schema order matches column
// order on return.

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// RenameColumns applies fn to every column name. It fails without modifying
// the frame if the mapping would produce duplicate names.
func (f *Frame) RenameColumns(fn func(string) string) error {
	next := make([]string, len(f.cols))
	seen := make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		name := fn(c.Name())
		if j, dup := seen[name]; dup {
			return fmt.Errorf("renaming collides: columns %d and %d both map to %q", j, i, name)
		}
		seen[name] = i
		next[i] = name
	}
	for i, c := range f.cols {
		c.rename(next[i])
		f.schema.Columns[i].Name = next[i]
	}
	f.rebuildIndex()
	return nil
}

// DropColumns removes the named columns. Names not present are ignored.
func (f *Frame) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cols := f.cols[:0]
	schema := f.schema.Columns[:0]
	for i, c := range f.cols {
		if drop[c.Name()] {
			continue
		}
		cols = append(cols, c)
		schema = append(schema, f.schema.Columns[i])
	}
	f.cols = cols
	f.schema.Columns = schema
	f.rebuildIndex()
}

// KeepColumns keeps only the named columns, in the listed order. Names not
// present are ignored.
func (f *Frame) KeepColumns(names []string) {
	var cols []Column
	var schema []ColumnSchema
	for _, n := range names {
		i, ok := f.index[n]
		if !ok {
			continue
		}
		cols = append(cols, f.cols[i])
		schema = append(schema, f.schema.Columns[i])
	}
	f.cols = cols
	f.schema.Columns = schema
	f.rebuildIndex()
}

// KeepRows filters rows in place; keep must have one entry per row.
func (f *Frame) KeepRows(keep []bool) {
	if len(keep) != f.nrows {
		panic("dataset: keep mask length mismatch")
	}
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	for _, c := range f.cols {
		c.filter(keep)
	}
	f.nrows = n
}

// RowKey returns a fingerprint for a row, equal for rows with identical
// values in every column.
func (f *Frame) RowKey(row int) string {
	parts := make([]string, len(f.cols))
	for i, c := range f.cols {
		parts[i] = c.cellKey(row)
	}
	return strings.Join(parts, "\x1f")
}

// RowIsEmpty reports whether every cell in the row is null or, for string
// columns, blank after trimming.
func (f *Frame) RowIsEmpty(row int) bool {
	for _, c := range f.cols {
		if c.IsNull(row) {
			continue
		}
		if sc, ok := c.(*StringColumn); ok {
			v, _ := sc.Get(row)
			if strings.TrimSpace(v) == "" {
				continue
			}
		}
		return false
	}
	return true
}

// Append adds every row of other to f. Schemas must match by name and kind,
// in order.
func (f *Frame) Append(other *Frame) error {
	if len(f.cols) != len(other.cols) {
		return fmt.Errorf("append: column count mismatch: %d vs %d", len(f.cols), len(other.cols))
	}
	for i, cs := range f.schema.Columns {
		ocs := other.schema.Columns[i]
		if cs.Name != ocs.Name || cs.Type != ocs.Type {
			return fmt.Errorf("append: column %d differs: %s/%v vs %s/%v", i, cs.Name, cs.Type, ocs.Name, ocs.Type)
		}
	}
	for r := 0; r < other.nrows; r++ {
		f.AppendNullRow()
		row := f.nrows - 1
		for i, c := range f.cols {
			oc := other.cols[i]
			if oc.IsNull(r) {
				continue
			}
			switch col := c.(type) {
			case *BoolColumn:
				v, _ := oc.(*BoolColumn).Get(r)
				col.Set(row, v)
			case *IntColumn:
				v, _ := oc.(*IntColumn).Get(r)
				col.Set(row, v)
			case *FloatColumn:
				v, _ := oc.(*FloatColumn).Get(r)
				col.Set(row, v)
			case *StringColumn:
				v, _ := oc.(*StringColumn).Get(r)
				col.Set(row, v)
			case *TimeColumn:
				v, _ := oc.(*TimeColumn).Get(r)
				col.Set(row, v)
			}
		}
	}
	return nil
}

// CellText renders a cell as text, the way loads and exports serialize it.
// The second result is false for null cells.
func CellText(c Column, row int) (string, bool) {
	if c.IsNull(row) {
		return "", false
	}
	switch col := c.(type) {
	case *BoolColumn:
		v, _ := col.Get(row)
		return strconv.FormatBool(v), true
	case *IntColumn:
		v, _ := col.Get(row)
		return strconv.FormatInt(v, 10), true
	case *FloatColumn:
		v, _ := col.Get(row)
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case *TimeColumn:
		v, _ := col.Get(row)
		return v.Format(time.RFC3339), true
	default:
		v, _ := c.(*StringColumn).Get(row)
		return v, true
	}
}

func (f *Frame) rebuildIndex() {
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		f.index[c.Name()] = i
	}
}
