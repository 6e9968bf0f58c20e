package store

import (
	"fmt"
	"maps"
	"sort"

	"github.com/successar/multikeydb/internal/queryir"
	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/value"
)

// Keys maps key column names to key values.
type Keys map[string]value.Key

// Row is one result row: column name to value. Key columns hold value.Int
// or value.String; the "value" column holds the decoded payload.
type Row map[string]value.Value

// lookup resolves a table name against the registry.
func (s *Store) lookup(op, name string) (schema.Table, error) {
	t, ok := s.registry.Lookup(name)
	if !ok {
		return schema.Table{}, unknownTableError(op, name)
	}
	return t, nil
}

// checkKeys validates keys against t. Every named column must be a key
// column of t holding a value of the column's type. With requireFull, every
// key column of t must also be present; without it (filter) the mapping may
// also name the value column.
func checkKeys(op string, t schema.Table, keys Keys, requireFull bool) error {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == schema.ValueColumn {
			if requireFull {
				return invalidKeyError(op, t.Name, name, "the value column cannot be used as a key")
			}
			if keys[name] == nil {
				return invalidKeyError(op, t.Name, name, "key value is nil")
			}
			continue
		}
		col, ok := t.Key(name)
		if !ok {
			return invalidKeyError(op, t.Name, name, "not a key column of the table")
		}
		k := keys[name]
		if k == nil {
			return invalidKeyError(op, t.Name, name, "key value is nil")
		}
		if !col.Type.Accepts(k) {
			return invalidKeyError(op, t.Name, name, fmt.Sprintf("expected %s key, got %T", col.Type, k))
		}
	}

	if requireFull {
		var missing []string
		for _, col := range t.KeyNames() {
			if _, ok := keys[col]; !ok {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return incompleteKeyError(op, t.Name, missing)
		}
	}
	return nil
}

// predicate builds the conjunctive equality predicate for keys, in table
// column order. An empty mapping matches every row.
func predicate(t schema.Table, keys Keys) queryir.Predicate {
	if len(keys) == 0 {
		return queryir.MatchAll()
	}
	return queryir.EqualsAll(t.ColumnNames(), map[string]value.Key(keys))
}

// storedForm returns keys with any value column entry replaced by its
// canonical JSON, the text actually held in the column.
func storedForm(op, table string, keys Keys) (Keys, error) {
	k, ok := keys[schema.ValueColumn]
	if !ok {
		return keys, nil
	}
	payload, err := value.EncodeString(k)
	if err != nil {
		return nil, invalidKeyError(op, table, schema.ValueColumn, err.Error())
	}
	out := maps.Clone(keys)
	out[schema.ValueColumn] = value.String(payload)
	return out, nil
}
