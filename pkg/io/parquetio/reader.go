package parquetio

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	parquet "github.com/segmentio/parquet-go"

	"reportpipe/pkg/dataset"
)

// Read loads a whole Parquet file into a Frame. Column kinds are inferred
// from a sample of rows, the same way the JSONL reader does.
func Read(path string, sampleRows int) (*dataset.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if sampleRows <= 0 {
		sampleRows = 100
	}
	r := parquet.NewGenericReader[map[string]any](f)
	rows := make([]map[string]any, sampleRows)
	for i := range rows {
		rows[i] = map[string]any{}
	}
	n, err := r.Read(rows)
	if err != nil && !isEOF(err) {
		_ = r.Close()
		return nil, err
	}
	schema := inferSchema(rows[:n])
	// segmentio readers cannot unread, so reopen for the full pass
	if err := r.Close(); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	r = parquet.NewGenericReader[map[string]any](f)
	defer func() { _ = r.Close() }()

	out := dataset.NewFrame(schema)
	buf := make([]map[string]any, 1024)
	for {
		for i := range buf {
			buf[i] = map[string]any{}
		}
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			appendRow(out, buf[i])
		}
		if err != nil {
			if isEOF(err) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

func isEOF(err error) bool {
	return err != nil && strings.Contains(err.Error(), "EOF")
}

func inferSchema(rows []map[string]any) dataset.Schema {
	keysSet := map[string]struct{}{}
	for _, m := range rows {
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]dataset.ColumnSchema, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range rows {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case float64, float32:
				nNum++
			case int, int32, int64:
				nNum++
				nInt++
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					continue
				}
				if x, err := strconv.ParseFloat(s, 64); err == nil {
					nNum++
					if float64(int64(x)) == x {
						nInt++
					}
				} else {
					nStr++
				}
			default:
				nStr++
			}
		}
		kind := dataset.KindString
		switch {
		case nBool > nNum && nBool >= nStr:
			kind = dataset.KindBool
		case nNum > nStr:
			if nInt == nNum {
				kind = dataset.KindInt
			} else {
				kind = dataset.KindFloat
			}
		}
		cols[i] = dataset.ColumnSchema{Name: k, Type: kind, Nullable: true}
	}
	return dataset.Schema{Columns: cols}
}

func appendRow(f *dataset.Frame, m map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case dataset.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case float32:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int64:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int32:
				_ = f.SetCell(row, cs.Name, float64(t))
			}
		case dataset.KindInt:
			switch t := v.(type) {
			case int64:
				_ = f.SetCell(row, cs.Name, t)
			case int32:
				_ = f.SetCell(row, cs.Name, int64(t))
			case float64:
				_ = f.SetCell(row, cs.Name, int64(t))
			}
		case dataset.KindBool:
			if t, ok := v.(bool); ok {
				_ = f.SetCell(row, cs.Name, t)
			}
		case dataset.KindTime:
			if t, ok := v.(time.Time); ok {
				_ = f.SetCell(row, cs.Name, t)
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			case []byte:
				_ = f.SetCell(row, cs.Name, string(t))
			}
		}
	}
}
