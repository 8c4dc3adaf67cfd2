package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"reportpipe/pkg/dataset"
	iox "reportpipe/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SkipRows   int  // records discarded before the header
	SampleRows int  // for inference; default 100
}

// Read loads a whole CSV file into a Frame, inferring column kinds from a
// sample of rows.
func Read(path string, opt ReaderOptions) (*dataset.Frame, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	rr := csv.NewReader(rc)
	rr.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	} else if d, lazy, err := sniffDelimiterAndQuotes(path); err == nil && d != 0 {
		rr.Comma = d
		rr.LazyQuotes = lazy
	}

	for i := 0; i < opt.SkipRows; i++ {
		if _, err := rr.Read(); err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}

	rec, err := rr.Read()
	if err != nil {
		return nil, err
	}
	var names []string
	if opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.ToValidUTF8(rec[i], "?")
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\uFEFF")
		}
		rec = nil
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	// sample for inference, keeping the records for the load below
	var sample [][]string
	if rec != nil {
		sample = append(sample, rec)
	}
	max := opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sample = append(sample, append([]string(nil), rec...))
	}

	kinds := inferKinds(len(names), sample)
	schema := dataset.Schema{Columns: make([]dataset.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = dataset.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}

	f := dataset.NewFrame(schema)
	for _, rec := range sample {
		appendRecord(f, schema, rec)
	}
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		appendRecord(f, schema, rec)
	}
	return f, nil
}

func appendRecord(f *dataset.Frame, schema dataset.Schema, rec []string) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			continue
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		switch cs.Type {
		case dataset.KindFloat:
			if x, err := strconv.ParseFloat(val, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case dataset.KindInt:
			if x, err := strconv.ParseInt(val, 10, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case dataset.KindBool:
			if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		default:
			_ = f.SetCell(row, cs.Name, val)
		}
	}
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func inferKinds(ncol int, rows [][]string) []dataset.Kind {
	kinds := make([]dataset.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, str := 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			} else {
				lv := strings.ToLower(v)
				if lv == "true" || lv == "false" {
					continue
				}
				str++
			}
		}
		// prefer float over int to be permissive
		if num > str {
			if integer == num {
				kinds[c] = dataset.KindInt
			} else {
				kinds[c] = dataset.KindFloat
			}
		} else {
			kinds[c] = dataset.KindString
		}
	}
	return kinds
}

func sniffDelimiterAndQuotes(path string) (rune, bool, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ',', false, nil
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := -1
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount > 0, nil
}
