package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reportpipe/pkg/dataset"
)

// Mode selects the write semantics of a table load.
type Mode string

const (
	ModeReplace Mode = "replace" // drop and recreate, then insert
	ModeAppend  Mode = "append"  // insert without clearing
)

// Table identifies the load target. VarcharSize is the width used for every
// column of the created table.
type Table struct {
	Name        string
	Schema      string
	VarcharSize int
}

// DB is the sink capability a job's upload and sql_exec actions run against.
type DB interface {
	Load(ctx context.Context, f *dataset.Frame, table Table, mode Mode) error
	Exec(ctx context.Context, statement string) error
}

// Opener hands out a DB for a named database. Implementations may cache
// connections across jobs.
type Opener interface {
	Open(database string) (DB, error)
}

// StatementStore resolves named statement files to their literal text.
type StatementStore interface {
	Read(name string) (string, error)
}

// DirStatements reads statement files from a directory. Only the base name of
// a reference is honored so a job cannot escape the directory.
type DirStatements struct {
	Path string
}

func (d DirStatements) Read(name string) (string, error) {
	name = filepath.Base(name)
	b, err := os.ReadFile(filepath.Join(d.Path, name))
	if err != nil {
		return "", fmt.Errorf("statement file %s: %w", name, err)
	}
	return string(b), nil
}
