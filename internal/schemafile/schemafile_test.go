package schemafile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/testutil"
)

const eventsSchema = `package schema

table: events: {
	user: "integer"
	day:  "text"
}

table: accounts: {
	id: "str"
}
`

func TestLoad_DeclarationOrder(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"tables.cue": eventsSchema})

	decls, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, decls, 2)

	assert.Equal(t, "events", decls[0].Name)
	assert.Equal(t, []schema.Column{
		{Name: "user", Type: schema.Integer},
		{Name: "day", Type: schema.Text},
	}, decls[0].Keys)

	assert.Equal(t, "accounts", decls[1].Name)
	assert.Equal(t, []schema.Column{{Name: "id", Type: schema.Text}}, decls[1].Keys)
}

func TestLoad_QuotedNames(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"tables.cue": `package schema

table: "order items": {
	"group id": "integer"
}
`})

	decls, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "order items", decls[0].Name)
	assert.Equal(t, "group id", decls[0].Keys[0].Name)
}

func TestLoad_InvalidType(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"tables.cue": `package schema

table: events: {
	user: "float"
}
`})

	_, err := Load(dir)
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeInvalidType, le.Code)
	assert.Contains(t, le.Message, "column user")
	assert.True(t, le.Pos.IsValid())
	assert.Equal(t, 4, le.Pos.Line())
}

func TestLoad_NonStringType(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"tables.cue": `package schema

table: events: {
	user: 1
}
`})

	_, err := Load(dir)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeInvalidType, le.Code)
}

func TestLoad_ReservedColumn(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"tables.cue": `package schema

table: events: {
	value: "text"
}
`})

	_, err := Load(dir)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeInvalid, le.Code)
	assert.Contains(t, le.Message, "reserved")
}

func TestLoad_NoTables(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"other.cue": "package schema\n\nname: \"x\"\n"})

	_, err := Load(dir)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeEmpty, le.Code)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_SyntaxError(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"bad.cue": "package schema\n\ntable: {\n"})

	_, err := Load(dir)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeLoadFailed, le.Code)
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeEmpty, Message: "no table declarations found"}
	assert.Equal(t, "E003: no table declarations found", err.Error())
}

type recordingCreator struct {
	names []string
	fail  string
}

func (r *recordingCreator) CreateTable(_ context.Context, name string, keys []schema.Column) (schema.Table, error) {
	if name == r.fail {
		return schema.Table{}, errors.New("boom")
	}
	r.names = append(r.names, name)
	return schema.NewTable(name, keys)
}

func TestApply_CreatesInOrder(t *testing.T) {
	decls := []Declaration{
		{Name: "b", Keys: []schema.Column{{Name: "k", Type: schema.Text}}},
		{Name: "a", Keys: []schema.Column{{Name: "k", Type: schema.Integer}}},
	}
	rc := &recordingCreator{}

	tables, err := Apply(context.Background(), rc, decls)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, rc.names)
	assert.Len(t, tables, 2)
}

func TestApply_StopsOnError(t *testing.T) {
	decls := []Declaration{
		{Name: "a", Keys: []schema.Column{{Name: "k", Type: schema.Text}}},
		{Name: "b", Keys: []schema.Column{{Name: "k", Type: schema.Text}}},
		{Name: "c", Keys: []schema.Column{{Name: "k", Type: schema.Text}}},
	}
	rc := &recordingCreator{fail: "b"}

	tables, err := Apply(context.Background(), rc, decls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply b")
	assert.Len(t, tables, 1)
	assert.Equal(t, []string{"a"}, rc.names)
}

func TestApply_Store(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"tables.cue": eventsSchema})
	decls, err := Load(dir)
	require.NoError(t, err)

	st := testutil.OpenStore(t)

	ctx := context.Background()
	_, err = Apply(ctx, st, decls)
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "accounts"}, st.Tables())

	// Applying twice is a no-op.
	_, err = Apply(ctx, st, decls)
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "accounts"}, st.Tables())
}
