// Package framesource builds frames from SQL query results. One field is
// created per result column, so a log table can be queried and its payload
// column extracted like any frame file.
//
// Supported drivers are sqlite (modernc.org/sqlite), postgres through
// pgx's database/sql adapter, and mysql.
//
//	db, err := framesource.Open(ctx, "postgres", dsn)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	f, err := framesource.Query(ctx, db, "events", `SELECT ts AS "Time", payload FROM events`)
package framesource

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/frame"
)

var driverNames = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"pgx":        "pgx",
	"postgres":   "pgx",
	"postgresql": "pgx",
	"mysql":      "mysql",
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// DriverName resolves a driver name or alias to the registered
// database/sql driver
func DriverName(name string) (string, error) {
	if driver, ok := driverNames[strings.ToLower(name)]; ok {
		return driver, nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unsupported sql driver %q", name)
}

// Open opens and pings a database
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to open database").
			WithDetail("driver", name)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to connect to database").
			WithDetail("driver", name)
	}
	return db, nil
}

// Query runs query and returns its result as a frame named name
func Query(ctx context.Context, db *sql.DB, name, query string, args ...any) (*frame.Frame, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to run query")
	}
	defer rows.Close() // Ignore close error

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read result columns")
	}

	columns := make([][]any, len(colTypes))
	for i := range columns {
		columns[i] = []any{}
	}

	dest := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to scan row")
		}
		for i, v := range dest {
			columns[i] = append(columns[i], normalize(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to iterate rows")
	}

	fields := make([]*frame.Field, len(colTypes))
	for i, ct := range colTypes {
		fields[i] = buildField(ct.Name(), ct.DatabaseTypeName(), columns[i])
	}
	return frame.New(name, fields...), nil
}

// normalize maps driver values onto the value kinds frames hold
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC()
	case bool, string:
		return val
	}
	if n, ok := frame.AsFloat(v); ok {
		return n
	}
	return v
}

// buildField types a column from its declared database type, falling back
// to inference from the values
func buildField(name, dbType string, values []any) *frame.Field {
	fieldType := typeFromDB(dbType)
	switch fieldType {
	case frame.FieldTypeNumber:
		for i, v := range values {
			if s, ok := v.(string); ok {
				if n, ok := frame.AsFloat(s); ok {
					values[i] = n
				}
			}
		}
	case frame.FieldTypeBoolean:
		for i, v := range values {
			if n, ok := v.(float64); ok {
				values[i] = n != 0
			}
		}
	case frame.FieldTypeTime:
		for i, v := range values {
			if s, ok := v.(string); ok {
				values[i] = parseTime(s)
			}
		}
	case "":
		fieldType = frame.InferFieldType(values)
	}
	return frame.NewField(name, fieldType, values)
}

func parseTime(s string) any {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return nil
}

func typeFromDB(dbType string) frame.FieldType {
	t := strings.ToUpper(dbType)
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "BOOL"):
		return frame.FieldTypeBoolean
	case strings.Contains(t, "INT"), strings.Contains(t, "DEC"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), strings.Contains(t, "REAL"):
		return frame.FieldTypeNumber
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return frame.FieldTypeTime
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"),
		t == "JSON", t == "JSONB", t == "UUID":
		return frame.FieldTypeString
	}
	return ""
}
