package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/successar/multikeydb/internal/schema"
)

func TestLoadScenario_Events(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/events.yaml")
	require.NoError(t, err)

	assert.Equal(t, "events", s.Name)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, []schema.Column{
		{Name: "user", Type: schema.Integer},
		{Name: "day", Type: schema.Text},
	}, s.Tables[0].Keys)

	first := s.Steps[0]
	assert.Equal(t, OpUpsert, first.Op)
	assert.Equal(t, map[string]any{"user": 1, "day": "2024-01-01"}, first.Keys)
	assert.True(t, first.HasValue())
	assert.False(t, first.HasExpect())
}

func TestParseScenario_TypeAliases(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: aliases
description: type aliases
tables:
  - name: t
    keys: [{name: k, type: str}, {name: n, type: INT}]
steps:
  - op: dump
`))
	require.NoError(t, err)
	assert.Equal(t, schema.Text, s.Tables[0].Keys[0].Type)
	assert.Equal(t, schema.Integer, s.Tables[0].Keys[1].Type)
}

func TestParseScenario_NullValueIsSet(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: nulls
description: null payload
tables:
  - name: t
    keys: [{name: k, type: text}]
steps:
  - op: upsert
    table: t
    keys: {k: a}
    value: null
`))
	require.NoError(t, err)
	assert.True(t, s.Steps[0].HasValue())
}

func TestParseScenario_Errors(t *testing.T) {
	base := "name: x\ndescription: y\n"
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing name", "description: y\nsteps: [{op: dump}]\n", "name is required"},
		{"missing description", "name: x\nsteps: [{op: dump}]\n", "description is required"},
		{"no steps", base, "steps list is required"},
		{"unknown field", base + "step: []\n", "field step not found"},
		{"unknown op", base + "steps: [{op: merge, table: t}]\n", `unknown op "merge"`},
		{"missing table", base + "steps: [{op: get}]\n", "table is required for get"},
		{"upsert without value", base + "steps: [{op: upsert, table: t}]\n", "value is required"},
		{"absent and expect", base + "steps: [{op: get, table: t, absent: true, expect: 1}]\n", "mutually exclusive"},
		{"count without expect", base + "steps: [{op: count, table: t}]\n", "expect is required for count"},
		{"bad column type", base + "tables: [{name: t, keys: [{name: k, type: float}]}]\nsteps: [{op: dump}]\n", "unknown column type"},
		{"reserved column", base + "tables: [{name: t, keys: [{name: value, type: text}]}]\nsteps: [{op: dump}]\n", "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: s\ndescription: d\nsteps: [{op: dump}]\n"), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "s", s.Name)
}
