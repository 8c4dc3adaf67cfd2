package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"reportpipe/pkg/dataset"
	"reportpipe/pkg/io/csvio"
	"reportpipe/pkg/io/jsonlio"
	"reportpipe/pkg/io/parquetio"
)

// Export archives the cleaned frame to a file in the given format, creating
// parent directories as needed.
func Export(f *dataset.Frame, path, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	var err error
	switch format {
	case "csv":
		err = csvio.WriteAll(path, f, csvio.WriterOptions{})
	case "jsonl":
		err = jsonlio.WriteAll(path, f)
	case "parquet":
		err = parquetio.WriteAll(path, f)
	default:
		return fmt.Errorf("export %s: unsupported format %q", path, format)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
