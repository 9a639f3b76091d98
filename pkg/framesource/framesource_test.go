package framesource

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/frame"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE events (
		id INTEGER,
		ts TIMESTAMP,
		payload TEXT,
		ok BOOLEAN,
		score REAL
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO events VALUES
		(1, '2024-01-01T00:00:00Z', 'level=info code=200', 1, 1.5),
		(2, NULL, '{"level": "warn"}', 0, NULL)`)
	require.NoError(t, err)
	return db
}

func TestQuery(t *testing.T) {
	db := openMemory(t)

	f, err := Query(context.Background(), db, "events", `SELECT id, ts AS "Time", payload, ok, score FROM events ORDER BY id`)
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "events", f.Name)
	assert.Equal(t, 2, f.Length)
	assert.Equal(t, []string{"id", "Time", "payload", "ok", "score"}, f.FieldNames())

	assert.Equal(t, frame.FieldTypeNumber, f.Fields[0].Type)
	assert.Equal(t, []any{1.0, 2.0}, f.Fields[0].Values)

	assert.Equal(t, frame.FieldTypeTime, f.Fields[1].Type)
	ts, ok := f.Fields[1].Values[0].(time.Time)
	require.True(t, ok, "got %T", f.Fields[1].Values[0])
	assert.True(t, ts.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, f.Fields[1].Values[1])

	assert.Equal(t, frame.FieldTypeString, f.Fields[2].Type)
	assert.Equal(t, "level=info code=200", f.Fields[2].Values[0])

	assert.Equal(t, frame.FieldTypeBoolean, f.Fields[3].Type)
	assert.Equal(t, []any{true, false}, f.Fields[3].Values)

	assert.Equal(t, []any{1.5, nil}, f.Fields[4].Values)
}

func TestQuery_Expressions(t *testing.T) {
	db := openMemory(t)

	f, err := Query(context.Background(), db, "counts", `SELECT COUNT(*) AS n, MAX(payload) AS last FROM events WHERE id > ?`, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, f.Length)
	assert.Equal(t, []any{0.0}, f.Fields[0].Values)
	assert.Equal(t, frame.FieldTypeNumber, f.Fields[0].Type)
	assert.Equal(t, []any{nil}, f.Fields[1].Values)
}

func TestQuery_Empty(t *testing.T) {
	db := openMemory(t)

	f, err := Query(context.Background(), db, "none", `SELECT id, payload FROM events WHERE id < 0`)
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	assert.Equal(t, 0, f.Length)
	assert.Equal(t, frame.FieldTypeNumber, f.Fields[0].Type)
	assert.Equal(t, frame.FieldTypeString, f.Fields[1].Type)
}

func TestQuery_Error(t *testing.T) {
	db := openMemory(t)

	_, err := Query(context.Background(), db, "bad", `SELECT * FROM missing_table`)
	assert.True(t, errors.IsType(err, errors.ErrorTypeQuery))
}

func TestDriverName(t *testing.T) {
	for alias, want := range map[string]string{
		"sqlite":   "sqlite",
		"SQLite3":  "sqlite",
		"postgres": "pgx",
		"pgx":      "pgx",
		"mysql":    "mysql",
	} {
		got, err := DriverName(alias)
		require.NoError(t, err)
		assert.Equal(t, want, got, alias)
	}

	_, err := DriverName("oracle")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
