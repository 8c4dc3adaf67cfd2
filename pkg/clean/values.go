package clean

import (
	"context"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"reportpipe/pkg/dataset"
)

func init() {
	Register("trim_column_values", columnsFactory("trim_column_values", func(cols []string) Step { return trimColumnValues{cols} }))
	Register("trim_all_values", noParams("trim_all_values", func() Step { return trimAllValues{} }))
	Register("only_numbers_columns", columnsFactory("only_numbers_columns", func(cols []string) Step { return onlyNumbersColumns{cols} }))
	Register("replace_values", newReplaceValues)
	Register("parse_sinona", noParams("parse_sinona", func() Step { return parseSinona{} }))
}

func eachStringColumn(f *dataset.Frame, fn func(*dataset.StringColumn)) {
	for i := 0; i < f.Cols(); i++ {
		if c, ok := f.ColumnAt(i).(*dataset.StringColumn); ok {
			fn(c)
		}
	}
}

func isBlank(v string) bool { return strings.TrimSpace(v) == "" }

// trimColumnValues strips leading/trailing whitespace from the values of the
// named columns. Absent or non-string columns are a no-op.
type trimColumnValues struct {
	columns []string
}

func (trimColumnValues) Name() string { return "trim_column_values" }

func (s trimColumnValues) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	for _, name := range s.columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			continue
		}
		if c, ok := col.(*dataset.StringColumn); ok {
			trimStrings(c)
		}
	}
	return f, nil
}

// trimAllValues strips leading/trailing whitespace from every string value.
type trimAllValues struct{}

func (trimAllValues) Name() string { return "trim_all_values" }

func (trimAllValues) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	eachStringColumn(f, trimStrings)
	return f, nil
}

func trimStrings(c *dataset.StringColumn) {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v, _ := c.Get(i)
		c.Set(i, strings.TrimSpace(v))
	}
}

var nonDigits = regexp.MustCompile(`[^0-9]+`)

// onlyNumbersColumns strips all non-digit characters from the values of the
// named columns.
type onlyNumbersColumns struct {
	columns []string
}

func (onlyNumbersColumns) Name() string { return "only_numbers_columns" }

func (s onlyNumbersColumns) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	for _, name := range s.columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			continue
		}
		c, ok := col.(*dataset.StringColumn)
		if !ok {
			continue
		}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v, _ := c.Get(i)
			c.Set(i, nonDigits.ReplaceAllString(v, ""))
		}
	}
	return f, nil
}

type replaceValues struct {
	columns []string
	mapping map[string]string
}

func newReplaceValues(params map[string]any) (Step, error) {
	old, err := stringsParam("replace_values", params, "old_values")
	if err != nil {
		return nil, err
	}
	new_, err := stringsParam("replace_values", params, "new_values")
	if err != nil {
		return nil, err
	}
	if len(old) != len(new_) {
		return nil, configErrorf("replace_values", "old_values and new_values lengths differ: %d vs %d", len(old), len(new_))
	}
	cols, err := columnsParam("replace_values", params)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(old))
	for i, o := range old {
		m[o] = new_[i]
	}
	return replaceValues{columns: cols, mapping: m}, nil
}

func stringsParam(step string, params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, configErrorf(step, "required parameter %s is missing", key)
	}
	vals, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, configErrorf(step, "%s: %v", key, err)
	}
	return vals, nil
}

func (replaceValues) Name() string { return "replace_values" }

// Apply maps each old value to its positional new value, only within the
// named columns.
func (s replaceValues) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	for _, name := range s.columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			continue
		}
		c, ok := col.(*dataset.StringColumn)
		if !ok {
			continue
		}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v, _ := c.Get(i)
			if nv, hit := s.mapping[v]; hit {
				c.Set(i, nv)
			}
		}
	}
	return f, nil
}

// parseSinona rewrites the survey answers Sí/Si, No and No aplica/N.A. to the
// canonical SI, NO and NA, case-insensitively, on every column.
type parseSinona struct{}

func (parseSinona) Name() string { return "parse_sinona" }

func (parseSinona) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	eachStringColumn(f, func(c *dataset.StringColumn) {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v, _ := c.Get(i)
			switch strings.ToLower(v) {
			case "sí", "si":
				c.Set(i, "SI")
			case "no":
				c.Set(i, "NO")
			case "no aplica", "n.a.":
				c.Set(i, "NA")
			}
		}
	})
	return f, nil
}
