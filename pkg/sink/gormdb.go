package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reportpipe/pkg/dataset"
)

// insertChunk caps the rows per INSERT so statements stay under driver
// placeholder limits.
const insertChunk = 500

// GormOpener opens gorm connections from an engine string, appending the
// job's database name. Engine strings:
//
//	sqlite:<path-prefix>      -> <path-prefix><database>.db
//	postgres://user:pw@host/  -> postgres://user:pw@host/<database>
//
// Connections are cached per database for the life of the process.
type GormOpener struct {
	EngineString string

	mu    sync.Mutex
	conns map[string]*gormDB
}

func NewGormOpener(engineString string) *GormOpener {
	return &GormOpener{EngineString: engineString, conns: map[string]*gormDB{}}
}

func (o *GormOpener) Open(database string) (DB, error) {
	if o.EngineString == "" {
		return nil, fmt.Errorf("SQL_ENGINE_STRING must be provided")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if db, ok := o.conns[database]; ok {
		return db, nil
	}

	var dialector gorm.Dialector
	if after, ok := strings.CutPrefix(o.EngineString, "sqlite:"); ok {
		dialector = sqlite.Open(after + database + ".db")
	} else {
		dialector = postgres.Open(o.EngineString + database)
	}
	conn, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", database, err)
	}
	db := &gormDB{conn: conn}
	o.conns[database] = db
	return db, nil
}

type gormDB struct {
	conn *gorm.DB
}

// Load writes the frame into the table. Every column is created as VARCHAR
// of the table's configured width; replace drops and recreates the table,
// append creates it only when missing. The whole load runs in one
// transaction.
func (db *gormDB) Load(ctx context.Context, f *dataset.Frame, table Table, mode Mode) error {
	names := f.Names()
	if len(names) == 0 {
		return fmt.Errorf("load %s: dataset has no columns", table.Name)
	}
	qual := db.qualify(table)
	size := table.VarcharSize
	if size <= 0 {
		size = 2500
	}

	quoted := make([]string, len(names))
	defs := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
		defs[i] = fmt.Sprintf("%s VARCHAR(%d)", quoted[i], size)
	}

	return db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mode == ModeReplace {
			if err := tx.Exec("DROP TABLE IF EXISTS " + qual).Error; err != nil {
				return fmt.Errorf("drop %s: %w", table.Name, err)
			}
			if err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", qual, strings.Join(defs, ", "))).Error; err != nil {
				return fmt.Errorf("create %s: %w", table.Name, err)
			}
		} else {
			if err := tx.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qual, strings.Join(defs, ", "))).Error; err != nil {
				return fmt.Errorf("create %s: %w", table.Name, err)
			}
		}

		prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", qual, strings.Join(quoted, ", "))
		row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ") + ")"
		for start := 0; start < f.Rows(); start += insertChunk {
			end := start + insertChunk
			if end > f.Rows() {
				end = f.Rows()
			}
			values := make([]string, 0, end-start)
			args := make([]any, 0, (end-start)*len(names))
			for r := start; r < end; r++ {
				values = append(values, row)
				for c := 0; c < f.Cols(); c++ {
					if v, ok := dataset.CellText(f.ColumnAt(c), r); ok {
						args = append(args, v)
					} else {
						args = append(args, nil)
					}
				}
			}
			if err := tx.Exec(prefix+strings.Join(values, ", "), args...).Error; err != nil {
				return fmt.Errorf("insert into %s: %w", table.Name, err)
			}
		}
		return nil
	})
}

func (db *gormDB) Exec(ctx context.Context, statement string) error {
	return db.conn.WithContext(ctx).Exec(statement).Error
}

// qualify prefixes the table with its schema on backends that have schemas.
func (db *gormDB) qualify(table Table) string {
	q := quoteIdent(table.Name)
	if table.Schema != "" && db.conn.Dialector.Name() != "sqlite" {
		q = quoteIdent(table.Schema) + "." + q
	}
	return q
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
