package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func exec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
}

func TestIntrospect_Empty(t *testing.T) {
	db := openTestDB(t)

	tables, skipped, err := Introspect(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, tables)
	assert.Empty(t, skipped)
}

func TestIntrospect_MultiKeyTables(t *testing.T) {
	db := openTestDB(t)
	exec(t, db,
		`CREATE TABLE "events" ("user" INTEGER, "day" VARCHAR, "value" VARCHAR, PRIMARY KEY ("user", "day"))`,
		`CREATE TABLE "alpha" ("name" TEXT, "value" TEXT, PRIMARY KEY ("name"))`,
	)

	tables, skipped, err := Introspect(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, tables, 2)

	// Sorted by name.
	assert.Equal(t, "alpha", tables[0].Name)
	assert.Equal(t, []Column{{"name", Text}}, tables[0].Keys())
	assert.Equal(t, "events", tables[1].Name)
	assert.Equal(t, []Column{{"user", Integer}, {"day", Text}}, tables[1].Keys())
}

func TestIntrospect_SkipsForeignLayouts(t *testing.T) {
	db := openTestDB(t)
	exec(t, db,
		`CREATE TABLE "novalue" ("k" INTEGER, PRIMARY KEY ("k"))`,
		`CREATE TABLE "realkey" ("k" REAL, "value" TEXT, PRIMARY KEY ("k"))`,
		`CREATE TABLE "loose" ("k" INTEGER, "extra" TEXT, "value" TEXT, PRIMARY KEY ("k"))`,
		`CREATE TABLE "blobvalue" ("k" INTEGER, "value" BLOB, PRIMARY KEY ("k"))`,
		`CREATE TABLE "good" ("k" INTEGER, "value" TEXT, PRIMARY KEY ("k"))`,
	)

	tables, skipped, err := Introspect(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "good", tables[0].Name)

	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[s.Name] = s.Reason
	}
	assert.Contains(t, reasons["novalue"], "missing value column")
	assert.Contains(t, reasons["realkey"], "unsupported type")
	assert.Contains(t, reasons["loose"], "not part of the primary key")
	assert.Contains(t, reasons["blobvalue"], "value column has type")
}

func TestIntrospectTable_StoredName(t *testing.T) {
	db := openTestDB(t)
	exec(t, db, `CREATE TABLE "Mixed" ("k" TEXT, "value" TEXT, PRIMARY KEY ("k"))`)

	tbl, err := IntrospectTable(context.Background(), db, "mixed")
	require.NoError(t, err)
	assert.Equal(t, "Mixed", tbl.Name)

	_, err = IntrospectTable(context.Background(), db, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
