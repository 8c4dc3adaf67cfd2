package sink_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportpipe/pkg/dataset"
	"reportpipe/pkg/io/csvio"
	"reportpipe/pkg/sink"
)

func exportFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	s := dataset.Schema{Columns: []dataset.ColumnSchema{
		{Name: "a", Type: dataset.KindString, Nullable: true},
	}}
	f := dataset.NewFrame(s)
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "a", "x"))
	return f
}

func TestExportCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.csv")
	require.NoError(t, sink.Export(exportFrame(t), path, "csv"))

	back, err := csvio.Read(path, csvio.ReaderOptions{HasHeader: true, Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, 1, back.Rows())
}

func TestExportJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, sink.Export(exportFrame(t), path, "jsonl"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"a":"x"`)
}

func TestExportReportsWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	// the payload fits in the write buffer, so only the final flush hits
	// the full device; Export must still fail
	err := sink.Export(exportFrame(t), "/dev/full", "csv")
	assert.Error(t, err)
}

func TestExportUnknownFormat(t *testing.T) {
	err := sink.Export(exportFrame(t), filepath.Join(t.TempDir(), "out.bin"), "xml")
	assert.Error(t, err)
}

func TestDirStatements(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "q.sql"), []byte("SELECT 1"), 0o644))
	store := sink.DirStatements{Path: dir}

	text, err := store.Read("q.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)

	// path traversal collapses to the base name
	text, err = store.Read("../../../" + "q.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)

	_, err = store.Read("missing.sql")
	assert.Error(t, err)
}
