package stats

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// SQLite driver for the stats database.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// NewSQLiteRecorder creates a Recorder backed by a SQLite database at
// path. If path is empty, a unique name is generated. The recorder flushes
// on process exit.
func NewSQLiteRecorder(path string) Recorder {
	w := &sqliteWriter{
		path:      path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

type sqliteWriter struct {
	db *sql.DB

	path       string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

func (w *sqliteWriter) init() {
	if w.path == "" {
		w.path = "machsim_stats_" + xid.New().String() + ".sqlite3"
	}

	if _, err := os.Stat(w.path); err == nil {
		panic(errors.Errorf("stats file %s already exists", w.path))
	}

	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		panic(errors.Wrap(err, "opening stats database"))
	}

	w.db = db
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	// A recorder outlives scheduler rebuilds, so re-registering a table is
	// routine rather than an error.
	if _, ok := w.tables[tableName]; ok {
		return
	}

	names := fieldNames(sampleEntry)

	createSQL := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(names, ",\n\t") + "\n);"
	w.mustExecute(createSQL)

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, ok := w.tables[tableName]
	if !ok {
		panic(fmt.Sprintf("stats table %s does not exist", tableName))
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}
	return names
}

func (w *sqliteWriter) Flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := w.prepareInsert(tableName, t.entries[0])

		for _, entry := range t.entries {
			v := reflect.ValueOf(entry)
			args := make([]any, 0, v.NumField())
			for i := 0; i < v.NumField(); i++ {
				args = append(args, v.Field(i).Interface())
			}

			if _, err := stmt.Exec(args...); err != nil {
				panic(errors.Wrapf(err, "inserting into %s", tableName))
			}
		}

		t.entries = nil
		stmt.Close()
	}

	w.entryCount = 0
}

func (w *sqliteWriter) Close() {
	w.Flush()

	if err := w.db.Close(); err != nil {
		panic(errors.Wrap(err, "closing stats database"))
	}
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.db.Exec(query)
	if err != nil {
		panic(errors.Wrapf(err, "executing %q", query))
	}
	return res
}

func (w *sqliteWriter) prepareInsert(tableName string, sample any) *sql.Stmt {
	names := fieldNames(sample)
	placeholders := make([]string, len(names))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	insertSQL := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := w.db.Prepare(insertSQL)
	if err != nil {
		panic(errors.Wrapf(err, "preparing insert for %s", tableName))
	}

	return stmt
}

func fieldNames(entry any) []string {
	t := reflect.TypeOf(entry)
	if t.Kind() != reflect.Struct {
		panic("stats entries must be flat structs")
	}

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isScalarKind(field.Type.Kind()) {
			panic(fmt.Sprintf(
				"stats field %s has unsupported type %s",
				field.Name, field.Type))
		}
		names = append(names, field.Name)
	}

	return names
}

func isScalarKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
