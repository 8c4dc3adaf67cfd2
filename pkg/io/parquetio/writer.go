package parquetio

import (
	"encoding/json"
	"fmt"
	"time"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"reportpipe/pkg/dataset"
)

func parquetSchemaJSON(s dataset.Schema) string {
	// minimal JSON schema for the parquet-go JSONWriter
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case dataset.KindFloat:
			tag += "DOUBLE"
		case dataset.KindInt:
			tag += "INT64"
		case dataset.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a Parquet file.
func WriteAll(path string, f *dataset.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}

	cols := f.Schema().Columns
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for c, cs := range cols {
			col := f.ColumnAt(c)
			if col.IsNull(r) {
				continue
			}
			switch cs.Type {
			case dataset.KindFloat:
				v, _ := col.(*dataset.FloatColumn).Get(r)
				rec[cs.Name] = v
			case dataset.KindInt:
				v, _ := col.(*dataset.IntColumn).Get(r)
				rec[cs.Name] = v
			case dataset.KindBool:
				v, _ := col.(*dataset.BoolColumn).Get(r)
				rec[cs.Name] = v
			case dataset.KindString:
				v, _ := col.(*dataset.StringColumn).Get(r)
				rec[cs.Name] = v
			case dataset.KindTime:
				v, _ := col.(*dataset.TimeColumn).Get(r)
				rec[cs.Name] = v.Format(time.RFC3339)
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet encode row: %w", err)
		}
		if err := writer.Write(string(b)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	// the footer is written here; dropping this error means a corrupt file
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finalize: %w", err)
	}
	return fw.Close()
}
