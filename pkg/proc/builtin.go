package proc

import (
	"github.com/spf13/cast"

	"reportpipe/pkg/dataset"
	"reportpipe/pkg/io/csvio"
	"reportpipe/pkg/io/jsonlio"
	"reportpipe/pkg/io/parquetio"
)

func init() {
	Register(CSV{})
	Register(JSONL{})
	Register(Parquet{})
}

// CSV reads delimited text files.
//
// Parameters: separator (optional, single character; sniffed when absent),
// skip_rows (optional), has_header (optional, default true), sample_rows
// (optional, schema-inference sample size).
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Read(path string, params map[string]any) (*dataset.Frame, error) {
	opt := csvio.ReaderOptions{
		HasHeader:  true,
		SkipRows:   cast.ToInt(params["skip_rows"]),
		SampleRows: cast.ToInt(params["sample_rows"]),
	}
	if v, ok := params["has_header"]; ok {
		opt.HasHeader = cast.ToBool(v)
	}
	if sep := cast.ToString(params["separator"]); sep != "" {
		opt.Delimiter = []rune(sep)[0]
	}
	return csvio.Read(path, opt)
}

// JSONL reads newline-delimited JSON files.
//
// Parameters: sample_rows (optional).
type JSONL struct{}

func (JSONL) Name() string { return "jsonl" }

func (JSONL) Read(path string, params map[string]any) (*dataset.Frame, error) {
	return jsonlio.Read(path, jsonlio.ReaderOptions{SampleRows: cast.ToInt(params["sample_rows"])})
}

// Parquet reads Parquet files.
//
// Parameters: sample_rows (optional).
type Parquet struct{}

func (Parquet) Name() string { return "parquet" }

func (Parquet) Read(path string, params map[string]any) (*dataset.Frame, error) {
	return parquetio.Read(path, cast.ToInt(params["sample_rows"]))
}
