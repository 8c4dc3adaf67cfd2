package jsonlio

import (
	"encoding/json"

	"reportpipe/pkg/dataset"
	iox "reportpipe/pkg/io/ioutils"
)

// WriteAll writes a Frame to a JSONL file, one object per row. Null cells are
// omitted from the object. The close flushes buffered bytes to disk, so its
// error is returned.
func WriteAll(path string, f *dataset.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	cols := f.Schema().Columns
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, len(cols))
		for c, cs := range cols {
			col := f.ColumnAt(c)
			if col.IsNull(r) {
				continue
			}
			switch cs.Type {
			case dataset.KindFloat:
				v, _ := col.(*dataset.FloatColumn).Get(r)
				m[cs.Name] = v
			case dataset.KindInt:
				v, _ := col.(*dataset.IntColumn).Get(r)
				m[cs.Name] = v
			case dataset.KindBool:
				v, _ := col.(*dataset.BoolColumn).Get(r)
				m[cs.Name] = v
			case dataset.KindString:
				v, _ := col.(*dataset.StringColumn).Get(r)
				m[cs.Name] = v
			case dataset.KindTime:
				v, _ := col.(*dataset.TimeColumn).Get(r)
				m[cs.Name] = v
			}
		}
		if err := enc.Encode(m); err != nil {
			_ = out.Close()
			return err
		}
	}
	return out.Close()
}
