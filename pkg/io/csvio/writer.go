package csvio

import (
	"encoding/csv"
	"strconv"
	"time"

	"reportpipe/pkg/dataset"
	iox "reportpipe/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. The close is part of
// the contract: buffered bytes only reach disk then, so its error is the
// write failing.
func WriteAll(path string, f *dataset.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	if err := w.Write(f.Names()); err != nil {
		_ = out.Close()
		return err
	}

	cols := f.Schema().Columns
	for r := 0; r < f.Rows(); r++ {
		row := make([]string, len(cols))
		for c, cs := range cols {
			row[c] = formatCell(f.ColumnAt(c), cs.Type, r)
		}
		if err := w.Write(row); err != nil {
			_ = out.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func formatCell(col dataset.Column, kind dataset.Kind, r int) string {
	if col.IsNull(r) {
		return ""
	}
	switch kind {
	case dataset.KindFloat:
		v, _ := col.(*dataset.FloatColumn).Get(r)
		return strconv.FormatFloat(v, 'g', -1, 64)
	case dataset.KindInt:
		v, _ := col.(*dataset.IntColumn).Get(r)
		return strconv.FormatInt(v, 10)
	case dataset.KindBool:
		v, _ := col.(*dataset.BoolColumn).Get(r)
		return strconv.FormatBool(v)
	case dataset.KindTime:
		v, _ := col.(*dataset.TimeColumn).Get(r)
		return v.Format(time.RFC3339)
	default:
		v, _ := col.(*dataset.StringColumn).Get(r)
		return v
	}
}
