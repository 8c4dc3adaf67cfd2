package clean_test

import (
	"context"
	"errors"
	"testing"

	"reportpipe/pkg/clean"
	"reportpipe/pkg/dataset"
)

func frame(t *testing.T, cols []string, rows [][]any) *dataset.Frame {
	t.Helper()
	s := dataset.Schema{Columns: make([]dataset.ColumnSchema, len(cols))}
	for i, c := range cols {
		s.Columns[i] = dataset.ColumnSchema{Name: c, Type: dataset.KindString, Nullable: true}
	}
	f := dataset.NewFrame(s)
	for _, row := range rows {
		f.AppendNullRow()
		for i, c := range cols {
			if err := f.SetCell(f.Rows()-1, c, row[i]); err != nil {
				t.Fatal(err)
			}
		}
	}
	return f
}

func run(t *testing.T, f *dataset.Frame, specs []clean.Spec) *dataset.Frame {
	t.Helper()
	steps, err := clean.Resolve(specs)
	if err != nil {
		t.Fatal(err)
	}
	out, err := clean.Apply(context.Background(), f, steps)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func colValues(t *testing.T, f *dataset.Frame, name string) []any {
	t.Helper()
	c, ok := f.ColumnByName(name)
	if !ok {
		t.Fatalf("column %q not found, have %v", name, f.Names())
	}
	sc := c.(*dataset.StringColumn)
	out := make([]any, sc.Len())
	for i := 0; i < sc.Len(); i++ {
		if v, ok := sc.Get(i); ok {
			out[i] = v
		}
	}
	return out
}

func TestEmptyStepListIsIdentity(t *testing.T) {
	f := frame(t, []string{"a"}, [][]any{{"x"}, {"y"}})
	out := run(t, f, nil)
	if out != f {
		t.Fatal("empty pipeline must return the same frame")
	}
	if out.Rows() != 2 {
		t.Fatalf("rows changed: %d", out.Rows())
	}
}

func TestResolveUnknownStep(t *testing.T) {
	_, err := clean.Resolve([]clean.Spec{{Name: "no_such_step"}})
	var ce *clean.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestResolveRejectsParamsOnBareStep(t *testing.T) {
	_, err := clean.Resolve([]clean.Spec{{Name: "remove_empty_rows", Params: map[string]any{"x": 1}}})
	var ce *clean.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError for unexpected params, got %v", err)
	}
}

func TestRemoveEmptyRows(t *testing.T) {
	f := frame(t, []string{"a", "b"}, [][]any{
		{"x", "1"},
		{"", "  "},
		{nil, nil},
		{"y", ""},
	})
	out := run(t, f, []clean.Spec{{Name: "remove_empty_rows"}})
	if out.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Rows())
	}
	got := colValues(t, out, "a")
	if got[0] != "x" || got[1] != "y" {
		t.Fatalf("wrong rows kept: %v", got)
	}
}

func TestRemoveDuplicateRowsIsIdempotent(t *testing.T) {
	f := frame(t, []string{"a", "b"}, [][]any{
		{"x", "1"},
		{"x", "1"},
		{"x", "2"},
		{"x", "1"},
	})
	specs := []clean.Spec{{Name: "remove_duplicate_rows"}}
	out := run(t, f, specs)
	if out.Rows() != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d", out.Rows())
	}
	// first occurrence wins
	if got := colValues(t, out, "b"); got[0] != "1" || got[1] != "2" {
		t.Fatalf("wrong survivors: %v", got)
	}
	again := run(t, out, specs)
	if again.Rows() != 2 {
		t.Fatalf("dedup not idempotent: %d rows", again.Rows())
	}
}

func TestEmptyAsNull(t *testing.T) {
	f := frame(t, []string{"a"}, [][]any{{"x"}, {"   "}, {""}})
	out := run(t, f, []clean.Spec{{Name: "empty_asnull"}})
	c, _ := out.ColumnByName("a")
	if c.IsNull(0) {
		t.Fatal("non-blank value turned null")
	}
	if !c.IsNull(1) || !c.IsNull(2) {
		t.Fatal("blank values should be null")
	}
}

func TestTrimColumnNames(t *testing.T) {
	f := frame(t, []string{"  First   Name ", "b"}, [][]any{{"x", "y"}})
	out := run(t, f, []clean.Spec{{Name: "trim_column_names"}})
	if got := out.Names(); got[0] != "First Name" {
		t.Fatalf("got %q", got[0])
	}
}

func TestTruncateColumnNames(t *testing.T) {
	f := frame(t, []string{"abcdef", "xy"}, [][]any{{"1", "2"}})
	out := run(t, f, []clean.Spec{{Name: "truncate_column_names", Params: map[string]any{"length": 3}}})
	if got := out.Names(); got[0] != "abc" || got[1] != "xy" {
		t.Fatalf("got %v", got)
	}
}

func TestTruncateColumnNamesCollision(t *testing.T) {
	f := frame(t, []string{"ABCX", "ABCY"}, [][]any{{"1", "2"}})
	steps, err := clean.Resolve([]clean.Spec{{Name: "truncate_column_names", Params: map[string]any{"length": 3}}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = clean.Apply(context.Background(), f, steps)
	var te *clean.TransformError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransformError on name collision, got %v", err)
	}
}

func TestTruncateRequiresPositiveLength(t *testing.T) {
	for _, params := range []map[string]any{nil, {"length": 0}, {"length": -1}} {
		_, err := clean.Resolve([]clean.Spec{{Name: "truncate_column_names", Params: params}})
		var ce *clean.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("params %v: expected ConfigError, got %v", params, err)
		}
	}
}

func TestNormalizeColumnNames(t *testing.T) {
	f := frame(t, []string{" Col #1 ", "col_2"}, [][]any{{"a", "b"}})
	out := run(t, f, []clean.Spec{{Name: "normalize_column_names"}})
	got := out.Names()
	if got[0] != "COL1" || got[1] != "COL_2" {
		t.Fatalf("got %v, want [COL1 COL_2]", got)
	}
}

func TestRemoveSpecialCharsKeepsCase(t *testing.T) {
	f := frame(t, []string{"a-b(c)"}, [][]any{{"1"}})
	out := run(t, f, []clean.Spec{{Name: "remove_specialchars_from_column_names"}})
	if got := out.Names(); got[0] != "abc" {
		t.Fatalf("got %q", got[0])
	}
}

func TestIgnoreAndFilterColumns(t *testing.T) {
	f := frame(t, []string{"a", "b", "c"}, [][]any{{"1", "2", "3"}})
	out := run(t, f, []clean.Spec{{Name: "ignore_columns", Params: map[string]any{"columns": []any{"b", "nope"}}}})
	if got := out.Names(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("ignore: got %v", got)
	}

	f = frame(t, []string{"a", "b", "c"}, [][]any{{"1", "2", "3"}})
	out = run(t, f, []clean.Spec{{Name: "filter_columns", Params: map[string]any{"columns": []any{"c", "a"}}}})
	if got := out.Names(); len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Fatalf("filter: got %v", got)
	}
}

func TestColumnsParamRequired(t *testing.T) {
	_, err := clean.Resolve([]clean.Spec{{Name: "filter_columns"}})
	var ce *clean.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError for missing columns, got %v", err)
	}
}

func TestTrimColumnValues(t *testing.T) {
	f := frame(t, []string{"a", "b"}, [][]any{{"  x ", "  y "}})
	out := run(t, f, []clean.Spec{{Name: "trim_column_values", Params: map[string]any{"columns": []any{"a"}}}})
	if got := colValues(t, out, "a"); got[0] != "x" {
		t.Fatalf("a not trimmed: %v", got)
	}
	if got := colValues(t, out, "b"); got[0] != "  y " {
		t.Fatalf("b should be untouched: %v", got)
	}
}

func TestTrimAllValues(t *testing.T) {
	f := frame(t, []string{"a", "b"}, [][]any{{" x ", "\ty\n"}})
	out := run(t, f, []clean.Spec{{Name: "trim_all_values"}})
	if got := colValues(t, out, "b"); got[0] != "y" {
		t.Fatalf("got %v", got)
	}
}

func TestOnlyNumbersColumns(t *testing.T) {
	f := frame(t, []string{"phone"}, [][]any{{"(55) 123-456"}, {"no digits"}})
	out := run(t, f, []clean.Spec{{Name: "only_numbers_columns", Params: map[string]any{"columns": []any{"phone"}}}})
	got := colValues(t, out, "phone")
	if got[0] != "55123456" {
		t.Fatalf("got %q", got[0])
	}
	if got[1] != "" {
		t.Fatalf("all-letter value should become empty, got %q", got[1])
	}
}

func TestReplaceValues(t *testing.T) {
	f := frame(t, []string{"v"}, [][]any{{"A"}, {"B"}, {"Z"}})
	out := run(t, f, []clean.Spec{{
		Name: "replace_values",
		Params: map[string]any{
			"columns":    []any{"v"},
			"old_values": []any{"A", "B"},
			"new_values": []any{"X", "Y"},
		},
	}})
	got := colValues(t, out, "v")
	if got[0] != "X" || got[1] != "Y" || got[2] != "Z" {
		t.Fatalf("got %v, want [X Y Z]", got)
	}
}

func TestReplaceValuesLengthMismatch(t *testing.T) {
	_, err := clean.Resolve([]clean.Spec{{
		Name: "replace_values",
		Params: map[string]any{
			"columns":    []any{"v"},
			"old_values": []any{"A", "B"},
			"new_values": []any{"X"},
		},
	}})
	var ce *clean.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError on old/new length mismatch, got %v", err)
	}
}

func TestParseSinona(t *testing.T) {
	f := frame(t, []string{"ans"}, [][]any{
		{"Sí"}, {"si"}, {"NO"}, {"No aplica"}, {"n.a."}, {"maybe"},
	})
	out := run(t, f, []clean.Spec{{Name: "parse_sinona"}})
	got := colValues(t, out, "ans")
	want := []string{"SI", "SI", "NO", "NA", "NA", "maybe"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("row %d: got %q, want %q", i, got[i], w)
		}
	}
}

func TestParseSpecs(t *testing.T) {
	specs, err := clean.ParseSpecs([]any{
		"trim_column_names",
		map[string]any{"filter_columns": map[string]any{"columns": []any{"a"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 || specs[0].Name != "trim_column_names" || specs[1].Name != "filter_columns" {
		t.Fatalf("got %+v", specs)
	}
	if specs[1].Params["columns"] == nil {
		t.Fatal("params lost")
	}

	if _, err := clean.ParseSpecs([]any{42}); err == nil {
		t.Fatal("expected error for non-string entry")
	}
	if _, err := clean.ParseSpecs([]any{map[string]any{"a": nil, "b": nil}}); err == nil {
		t.Fatal("expected error for multi-key mapping")
	}
}

func TestPipelineChaining(t *testing.T) {
	f := frame(t, []string{" Name ", "Extra"}, [][]any{
		{" Ana ", "x"},
		{" Ana ", "y"},
		{"", ""},
	})
	out := run(t, f, []clean.Spec{
		{Name: "normalize_column_names"},
		{Name: "trim_all_values"},
		{Name: "remove_empty_rows"},
		{Name: "ignore_columns", Params: map[string]any{"columns": []any{"EXTRA"}}},
		{Name: "remove_duplicate_rows"},
	})
	if got := out.Names(); len(got) != 1 || got[0] != "NAME" {
		t.Fatalf("columns: %v", got)
	}
	if out.Rows() != 1 {
		t.Fatalf("rows: %d", out.Rows())
	}
	if got := colValues(t, out, "NAME"); got[0] != "Ana" {
		t.Fatalf("value: %v", got)
	}
}
