package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/successar/multikeydb/internal/value"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_EventsScenarioPasses(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/events.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, len(s.Steps), result.Steps)
	assert.Len(t, result.Dump, 2)
}

func TestRun_FreshDatabasePerRun(t *testing.T) {
	s := mustParse(t, `
name: fresh
description: each run starts empty
tables:
  - name: t
    keys: [{name: k, type: text}]
steps:
  - op: count
    table: t
    expect: 0
  - op: upsert
    table: t
    keys: {k: a}
    value: true
`)
	dir := t.TempDir()
	ctx := context.Background()

	for range 2 {
		result, err := Run(ctx, s, dir)
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	dbs := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".db" {
			dbs++
		}
	}
	assert.Equal(t, 2, dbs, "each run uses its own database file")
}

func TestRun_ReportsFailures(t *testing.T) {
	s := mustParse(t, `
name: failing
description: every expectation here is wrong
tables:
  - name: t
    keys: [{name: k, type: integer}]
steps:
  - op: upsert
    table: t
    keys: {k: 1}
    value: {a: 1}
  - op: get
    table: t
    keys: {k: 1}
    expect: {a: 2}
  - op: get
    table: t
    keys: {k: 1}
    absent: true
  - op: get
    table: t
    keys: {k: 2}
  - op: upsert
    table: t
    keys: {k: 3}
    value: 1
    expect_error: incomplete_key
  - op: delete
    table: t
    keys: {}
  - op: filter
    table: t
    expect_rows: []
  - op: count
    table: t
    expect: 5
`)

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)

	assert.Contains(t, result.Errors[0], `steps[1] get t: expected {"a":2}, got {"a":1}`)
	assert.Contains(t, result.Errors[1], "expected no record")
	assert.Contains(t, result.Errors[2], "record not found")
	assert.Contains(t, result.Errors[3], "expected error incomplete_key, got success")
	assert.Contains(t, result.Errors[4], "unexpected error")
	assert.Contains(t, result.Errors[5], "expected 0 rows, got 2")
	assert.Contains(t, result.Errors[6], "expected 5 records, got 2")
}

func TestRun_WrongErrorCode(t *testing.T) {
	s := mustParse(t, `
name: wrong_code
description: expects the wrong failure
tables:
  - name: t
    keys: [{name: k, type: integer}]
steps:
  - op: get
    table: t
    keys: {k: "one"}
    expect_error: incomplete_key
`)

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error incomplete_key, got get: INVALID_KEY")
}

func TestRun_UnsupportedKeyType(t *testing.T) {
	s := mustParse(t, `
name: bad_key
description: floats are not keys
tables:
  - name: t
    keys: [{name: k, type: integer}]
steps:
  - op: get
    table: t
    keys: {k: 1.5}
`)

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unsupported key type float64")
}

func TestRun_FinalDump(t *testing.T) {
	s := mustParse(t, `
name: dump
description: final dump is canonical
tables:
  - name: b
    keys: [{name: k, type: text}]
  - name: a
    keys: [{name: k, type: integer}]
steps:
  - op: upsert
    table: a
    keys: {k: 2}
    value: null
  - op: upsert
    table: b
    keys: {k: x}
    value: "<ok>"
`)

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, []value.Object{
		{"table": value.String("b"), "k": value.String("x"), "value": value.String("<ok>")},
		{"table": value.String("a"), "k": value.Int(2), "value": value.Null{}},
	}, result.Dump)

	dump, err := result.CanonicalDump()
	require.NoError(t, err)
	assert.Equal(t, `[{"k":"x","table":"b","value":"<ok>"},{"k":2,"table":"a","value":null}]`, string(dump))
}

func TestRun_InvalidDirectory(t *testing.T) {
	s := mustParse(t, "name: x\ndescription: y\nsteps: [{op: dump}]\n")

	_, err := Run(context.Background(), s, filepath.Join(t.TempDir(), "missing", "dir"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open scenario store")
}

func TestRun_CanceledContext(t *testing.T) {
	s := mustParse(t, "name: x\ndescription: y\nsteps: [{op: dump}]\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, s, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
