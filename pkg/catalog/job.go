package catalog

import (
	"fmt"

	"github.com/spf13/cast"

	"reportpipe/pkg/clean"
)

// Job is one job definition, materialized fresh from its configuration file
// on every scan. ID is the storage base name including the raw priority tag
// characters; File is the storage name the record came from.
type Job struct {
	ID      string
	File    string
	Tag     Tag
	Service string
	Report  string
	Enabled bool

	Downloader Selection
	Processor  Processor
	Upload     *Upload
	SQLExec    *SQLExec
	Export     *Export

	// Err is set when the record (or its whole file) failed to decode. The
	// job still enters selection so the failure is recorded per job instead
	// of aborting the run.
	Err error
}

// Label identifies the job in logs and outcome summaries.
func (j Job) Label() string {
	if j.Service == "" && j.Report == "" {
		return j.ID
	}
	return j.Service + " - " + j.Report
}

// Selection names a registered adapter and carries its raw parameters.
type Selection struct {
	Name   string
	Params map[string]any
}

// Processor names a registered file processor plus its parameters and the
// ordered cleaning-step list.
type Processor struct {
	Name     string
	Params   map[string]any
	Cleaning []clean.Spec
}

// Upload is a table-load sink action.
type Upload struct {
	Database    string
	Table       string
	Schema      string
	Mode        string // replace | append
	VarcharSize int
}

// SQLExec is a post-load statement sink action: named statement files from
// the queries directory, then literal statements, in listed order.
type SQLExec struct {
	Database string
	Files    []string
	Queries  []string
}

// Export is a file-archive sink action for the cleaned dataset.
type Export struct {
	Path   string
	Format string // csv | jsonl | parquet
}

// decodeJob builds a Job from one decoded record.
func decodeJob(id, file string, tag Tag, raw map[string]any) Job {
	j := Job{ID: id, File: file, Tag: tag}

	j.Service = cast.ToString(raw["service"])
	j.Report = cast.ToString(raw["report"])
	enabled, err := cast.ToBoolE(raw["enabled"])
	if err != nil {
		j.Err = fmt.Errorf("enabled: %w", err)
		return j
	}
	j.Enabled = enabled

	if j.Downloader, err = decodeSelection(raw["downloader"]); err != nil {
		j.Err = fmt.Errorf("downloader: %w", err)
		return j
	}
	if j.Processor, err = decodeProcessor(raw["processor"]); err != nil {
		j.Err = fmt.Errorf("processor: %w", err)
		return j
	}
	if j.Upload, err = decodeUpload(raw["upload"]); err != nil {
		j.Err = fmt.Errorf("upload: %w", err)
		return j
	}
	if j.SQLExec, err = decodeSQLExec(raw["sql_exec"]); err != nil {
		j.Err = fmt.Errorf("sql_exec: %w", err)
		return j
	}
	if j.Export, err = decodeExport(raw["export"]); err != nil {
		j.Err = fmt.Errorf("export: %w", err)
		return j
	}
	return j
}

func asMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
	return m, nil
}

func decodeSelection(v any) (Selection, error) {
	m, err := asMap(v)
	if err != nil {
		return Selection{}, err
	}
	if m == nil {
		return Selection{}, fmt.Errorf("must be provided")
	}
	name := cast.ToString(m["name"])
	if name == "" {
		return Selection{}, fmt.Errorf("name must be provided")
	}
	return Selection{Name: name, Params: m}, nil
}

func decodeProcessor(v any) (Processor, error) {
	m, err := asMap(v)
	if err != nil {
		return Processor{}, err
	}
	if m == nil {
		// A job without a processor only downloads; nothing else runs.
		return Processor{}, nil
	}
	name := cast.ToString(m["name"])
	if name == "" {
		return Processor{}, fmt.Errorf("name must be provided")
	}
	p := Processor{Name: name, Params: m}
	if rawList, ok := m["cleaning"]; ok {
		list, ok := rawList.([]any)
		if !ok {
			return Processor{}, fmt.Errorf("cleaning must be a list, got %T", rawList)
		}
		if p.Cleaning, err = clean.ParseSpecs(list); err != nil {
			return Processor{}, err
		}
	}
	return p, nil
}

func decodeUpload(v any) (*Upload, error) {
	m, err := asMap(v)
	if err != nil || m == nil {
		return nil, err
	}
	u := &Upload{
		Database:    cast.ToString(m["database"]),
		Table:       cast.ToString(m["table"]),
		Schema:      cast.ToString(m["schema"]),
		Mode:        cast.ToString(m["mode"]),
		VarcharSize: cast.ToInt(m["varchar_size"]),
	}
	if u.Database == "" {
		return nil, fmt.Errorf("database must be provided")
	}
	if u.Table == "" {
		return nil, fmt.Errorf("table must be provided")
	}
	switch u.Mode {
	case "":
		u.Mode = "replace"
	case "replace", "append":
	default:
		return nil, fmt.Errorf("mode must be replace or append, got %q", u.Mode)
	}
	if u.Schema == "" {
		u.Schema = "dbo"
	}
	if u.VarcharSize == 0 {
		u.VarcharSize = 2500
	}
	return u, nil
}

func decodeSQLExec(v any) (*SQLExec, error) {
	m, err := asMap(v)
	if err != nil || m == nil {
		return nil, err
	}
	s := &SQLExec{Database: cast.ToString(m["database"])}
	if s.Database == "" {
		return nil, fmt.Errorf("database must be provided")
	}
	// Both keys accept a single string or a list.
	if raw, ok := m["sql_file"]; ok {
		if s.Files, err = cast.ToStringSliceE(raw); err != nil {
			return nil, fmt.Errorf("sql_file: %w", err)
		}
	}
	if raw, ok := m["sql_query"]; ok {
		if s.Queries, err = cast.ToStringSliceE(raw); err != nil {
			return nil, fmt.Errorf("sql_query: %w", err)
		}
	}
	return s, nil
}

func decodeExport(v any) (*Export, error) {
	m, err := asMap(v)
	if err != nil || m == nil {
		return nil, err
	}
	e := &Export{Path: cast.ToString(m["path"]), Format: cast.ToString(m["format"])}
	if e.Path == "" {
		return nil, fmt.Errorf("path must be provided")
	}
	switch e.Format {
	case "csv", "jsonl", "parquet":
	case "":
		e.Format = "csv"
	default:
		return nil, fmt.Errorf("format must be csv, jsonl or parquet, got %q", e.Format)
	}
	return e, nil
}
