// Package schemafile reads table declarations from CUE files.
//
// A directory of .cue files is loaded as one CUE instance. Tables are
// declared under the top-level "table" field, one struct per table whose
// fields are the key columns in order:
//
//	package schema
//
//	table: events: {
//		user: "integer"
//		day:  "text"
//	}
//
// Column types are "integer" or "text" (int, str and string are accepted
// as aliases).
package schemafile

import (
	"context"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/successar/multikeydb/internal/schema"
)

// Error codes carried by LoadError.
const (
	ErrCodeNotFound    = "E005" // Directory not found
	ErrCodeLoadFailed  = "E004" // CUE load or build failed
	ErrCodeInvalidType = "E104" // Unsupported column type
	ErrCodeInvalid     = "E105" // Invalid table or column declaration
	ErrCodeEmpty       = "E003" // No table declarations
)

// Declaration is one table declared in a schema directory.
type Declaration struct {
	Name string
	Keys []schema.Column
	Pos  token.Pos
}

// LoadError is a schema file problem, with the CUE position when known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads every table declaration in dir. Tables and their columns keep
// their declaration order.
func Load(dir string) ([]Declaration, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return Extract(v)
}

// Extract reads the declarations under the "table" field of v.
func Extract(v cue.Value) ([]Declaration, error) {
	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "no table declarations found", Pos: v.Pos()}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("table must be a struct: %v", err), Pos: tablesVal.Pos()}
	}

	var decls []Declaration
	for iter.Next() {
		decl, err := extractTable(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	if len(decls) == 0 {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "no table declarations found", Pos: tablesVal.Pos()}
	}
	return decls, nil
}

func extractTable(name string, v cue.Value) (Declaration, error) {
	iter, err := v.Fields()
	if err != nil {
		return Declaration{}, &LoadError{
			Code:    ErrCodeInvalid,
			Message: fmt.Sprintf("table %s: must be a struct of key columns", name),
			Pos:     v.Pos(),
		}
	}

	var keys []schema.Column
	for iter.Next() {
		col := iter.Selector().Unquoted()
		s, err := iter.Value().String()
		if err != nil {
			return Declaration{}, &LoadError{
				Code:    ErrCodeInvalidType,
				Message: fmt.Sprintf("table %s: column %s: type must be a string", name, col),
				Pos:     iter.Value().Pos(),
			}
		}
		typ, err := schema.ParseType(s)
		if err != nil {
			return Declaration{}, &LoadError{
				Code:    ErrCodeInvalidType,
				Message: fmt.Sprintf("table %s: column %s: %v", name, col, err),
				Pos:     iter.Value().Pos(),
			}
		}
		keys = append(keys, schema.Column{Name: col, Type: typ})
	}

	if _, err := schema.NewTable(name, keys); err != nil {
		return Declaration{}, &LoadError{Code: ErrCodeInvalid, Message: err.Error(), Pos: v.Pos()}
	}
	return Declaration{Name: name, Keys: keys, Pos: v.Pos()}, nil
}

// TableCreator is the part of store.Store that Apply needs.
type TableCreator interface {
	CreateTable(ctx context.Context, name string, keys []schema.Column) (schema.Table, error)
}

// Apply creates every declared table in order and returns the resulting
// definitions. Tables that already exist keep their stored definition.
func Apply(ctx context.Context, st TableCreator, decls []Declaration) ([]schema.Table, error) {
	tables := make([]schema.Table, 0, len(decls))
	for _, d := range decls {
		t, err := st.CreateTable(ctx, d.Name, d.Keys)
		if err != nil {
			return tables, fmt.Errorf("apply %s: %w", d.Name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
