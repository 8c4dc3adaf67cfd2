package clean

import (
	"context"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"reportpipe/pkg/dataset"
)

func init() {
	Register("trim_column_names", noParams("trim_column_names", func() Step { return trimColumnNames{} }))
	Register("truncate_column_names", newTruncateColumnNames)
	Register("remove_specialchars_from_column_names", noParams("remove_specialchars_from_column_names", func() Step { return removeSpecialChars{} }))
	Register("normalize_column_names", noParams("normalize_column_names", func() Step { return normalizeColumnNames{} }))
	Register("ignore_columns", columnsFactory("ignore_columns", func(cols []string) Step { return ignoreColumns{cols} }))
	Register("filter_columns", columnsFactory("filter_columns", func(cols []string) Step { return filterColumns{cols} }))
}

// columnsFactory builds steps whose only parameter is a required column list.
// A single string is accepted and treated as a one-element list.
func columnsFactory(name string, mk func([]string) Step) Factory {
	return func(params map[string]any) (Step, error) {
		cols, err := columnsParam(name, params)
		if err != nil {
			return nil, err
		}
		return mk(cols), nil
	}
}

func columnsParam(step string, params map[string]any) ([]string, error) {
	raw, ok := params["columns"]
	if !ok {
		return nil, configErrorf(step, "required parameter columns is missing")
	}
	cols, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, configErrorf(step, "columns: %v", err)
	}
	if len(cols) == 0 {
		return nil, configErrorf(step, "columns must not be empty")
	}
	return cols, nil
}

// trimColumnNames strips leading/trailing whitespace from every column name
// and collapses internal runs of whitespace to single spaces.
type trimColumnNames struct{}

func (trimColumnNames) Name() string { return "trim_column_names" }

func (trimColumnNames) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	err := f.RenameColumns(func(name string) string {
		return strings.Join(strings.Fields(name), " ")
	})
	if err != nil {
		return nil, transformErrorf("trim_column_names", "%v", err)
	}
	return f, nil
}

type truncateColumnNames struct {
	length int
}

func newTruncateColumnNames(params map[string]any) (Step, error) {
	raw, ok := params["length"]
	if !ok {
		return nil, configErrorf("truncate_column_names", "required parameter length is missing")
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return nil, configErrorf("truncate_column_names", "length: %v", err)
	}
	if n <= 0 {
		return nil, configErrorf("truncate_column_names", "length must be positive, got %d", n)
	}
	return truncateColumnNames{length: n}, nil
}

func (truncateColumnNames) Name() string { return "truncate_column_names" }

// Apply cuts every column name to at most length runes. Truncation that
// collapses two columns onto the same name fails the step.
func (s truncateColumnNames) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	err := f.RenameColumns(func(name string) string {
		runes := []rune(name)
		if len(runes) <= s.length {
			return name
		}
		return string(runes[:s.length])
	})
	if err != nil {
		return nil, transformErrorf("truncate_column_names", "%v", err)
	}
	return f, nil
}

var specialChars = regexp.MustCompile(`[^0-9a-zA-Z_]+`)

// removeSpecialChars strips every character that is not alphanumeric or an
// underscore from the column names.
type removeSpecialChars struct{}

func (removeSpecialChars) Name() string { return "remove_specialchars_from_column_names" }

func (removeSpecialChars) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	err := f.RenameColumns(func(name string) string {
		return specialChars.ReplaceAllString(name, "")
	})
	if err != nil {
		return nil, transformErrorf("remove_specialchars_from_column_names", "%v", err)
	}
	return f, nil
}

// normalizeColumnNames strips special characters then uppercases every column
// name.
type normalizeColumnNames struct{}

func (normalizeColumnNames) Name() string { return "normalize_column_names" }

func (normalizeColumnNames) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	err := f.RenameColumns(func(name string) string {
		return strings.ToUpper(specialChars.ReplaceAllString(name, ""))
	})
	if err != nil {
		return nil, transformErrorf("normalize_column_names", "%v", err)
	}
	return f, nil
}

// ignoreColumns drops the listed columns; absent names are a no-op.
type ignoreColumns struct {
	columns []string
}

func (ignoreColumns) Name() string { return "ignore_columns" }

func (s ignoreColumns) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	f.DropColumns(s.columns...)
	return f, nil
}

// filterColumns keeps only the listed columns; absent names are a no-op.
type filterColumns struct {
	columns []string
}

func (filterColumns) Name() string { return "filter_columns" }

func (s filterColumns) Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error) {
	f.KeepColumns(s.columns)
	return f, nil
}
