package clean

import (
	"context"

	"reportpipe/pkg/dataset"
)

func init() {
	Register("remove_empty_rows", noParams("remove_empty_rows", func() Step { return removeEmptyRows{} }))
	Register("remove_duplicate_rows", noParams("remove_duplicate_rows", func() Step { return removeDuplicateRows{} }))
	Register("empty_asnull", noParams("empty_asnull", func() Step { return emptyAsNull{} }))
}

// noParams wraps a parameterless step, rejecting a non-empty parameter bag at
// resolve time.
func noParams(name string, mk func() Step) Factory {
	return func(params map[string]any) (Step, error) {
		if len(params) > 0 {
			return nil, configErrorf(name, "takes no parameters")
		}
		return mk(), nil
	}
}

// removeEmptyRows drops rows where every value is null or a blank string.
type removeEmptyRows struct{}

func (removeEmptyRows) Name() string { return "remove_empty_rows" }

func (removeEmptyRows) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	keep := make([]bool, f.Rows())
	for r := range keep {
		keep[r] = !f.RowIsEmpty(r)
	}
	f.KeepRows(keep)
	return f, nil
}

// removeDuplicateRows drops rows that duplicate an earlier row, keeping the
// first occurrence.
type removeDuplicateRows struct{}

func (removeDuplicateRows) Name() string { return "remove_duplicate_rows" }

func (removeDuplicateRows) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	seen := make(map[string]bool, f.Rows())
	keep := make([]bool, f.Rows())
	for r := range keep {
		k := f.RowKey(r)
		if !seen[k] {
			seen[k] = true
			keep[r] = true
		}
	}
	f.KeepRows(keep)
	return f, nil
}

// emptyAsNull replaces blank string values with the null marker, dataset-wide.
type emptyAsNull struct{}

func (emptyAsNull) Name() string { return "empty_asnull" }

func (emptyAsNull) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	eachStringColumn(f, func(c *dataset.StringColumn) {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			if v, _ := c.Get(i); isBlank(v) {
				c.SetNull(i)
			}
		}
	})
	return f, nil
}
