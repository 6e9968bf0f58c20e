package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Skipped describes a physical table that is not a multi-key table.
type Skipped struct {
	Name   string
	Reason string
}

// LayoutError reports a physical table whose columns do not follow the
// multi-key layout (typed key columns forming the primary key plus a text
// "value" column).
type LayoutError struct {
	Table  string
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("table %q is not a multi-key table: %s", e.Table, e.Reason)
}

// Introspect reads every user table from the SQLite catalog.
// Tables are returned sorted by name; tables with a foreign layout are
// reported in skipped rather than failing the whole scan.
func Introspect(ctx context.Context, q Querier) (tables []Table, skipped []Skipped, err error) {
	names, err := tableNames(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range names {
		t, err := IntrospectTable(ctx, q, name)
		if err != nil {
			var le *LayoutError
			if errors.As(err, &le) {
				skipped = append(skipped, Skipped{Name: name, Reason: le.Reason})
				continue
			}
			return nil, nil, err
		}
		tables = append(tables, t)
	}
	return tables, skipped, nil
}

// tableNames lists user tables. The rows are fully drained before returning
// so callers holding a single connection can issue follow-up queries.
func tableNames(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

type physicalColumn struct {
	cid      int
	name     string
	declType string
	pk       int
}

// IntrospectTable rebuilds the definition of one table from
// pragma_table_info. The returned Name is the name as stored in the catalog.
// A *LayoutError is returned when the table exists but is not multi-key.
func IntrospectTable(ctx context.Context, q Querier, name string) (Table, error) {
	stored, err := storedName(ctx, q, name)
	if err != nil {
		return Table{}, err
	}

	cols, err := tableColumns(ctx, q, stored)
	if err != nil {
		return Table{}, err
	}
	return tableFromColumns(stored, cols)
}

func storedName(ctx context.Context, q Querier, name string) (string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`, name)
	if err != nil {
		return "", fmt.Errorf("look up table %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("look up table %q: %w", name, err)
		}
		return "", fmt.Errorf("table %q not found in catalog", name)
	}
	var stored string
	if err := rows.Scan(&stored); err != nil {
		return "", fmt.Errorf("scan table %q: %w", name, err)
	}
	return stored, nil
}

func tableColumns(ctx context.Context, q Querier, name string) ([]physicalColumn, error) {
	rows, err := q.QueryContext(ctx, `SELECT cid, name, type, pk FROM pragma_table_info(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("table info %q: %w", name, err)
	}
	defer rows.Close()

	var cols []physicalColumn
	for rows.Next() {
		var c physicalColumn
		if err := rows.Scan(&c.cid, &c.name, &c.declType, &c.pk); err != nil {
			return nil, fmt.Errorf("scan column of %q: %w", name, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %q: %w", name, err)
	}
	return cols, nil
}

func tableFromColumns(name string, cols []physicalColumn) (Table, error) {
	sort.Slice(cols, func(i, j int) bool { return cols[i].cid < cols[j].cid })

	var keys []Column
	sawValue := false
	for _, c := range cols {
		if c.name == ValueColumn {
			if affinity(c.declType) != Text {
				return Table{}, &LayoutError{Table: name, Reason: fmt.Sprintf("value column has type %q", c.declType)}
			}
			if c.pk != 0 {
				return Table{}, &LayoutError{Table: name, Reason: "value column is part of the primary key"}
			}
			sawValue = true
			continue
		}
		if c.pk == 0 {
			return Table{}, &LayoutError{Table: name, Reason: fmt.Sprintf("column %q is not part of the primary key", c.name)}
		}
		typ := affinity(c.declType)
		if typ == "" {
			return Table{}, &LayoutError{Table: name, Reason: fmt.Sprintf("column %q has unsupported type %q", c.name, c.declType)}
		}
		keys = append(keys, Column{Name: c.name, Type: typ})
	}
	if !sawValue {
		return Table{}, &LayoutError{Table: name, Reason: "missing value column"}
	}

	t, err := NewTable(name, keys)
	if err != nil {
		return Table{}, &LayoutError{Table: name, Reason: err.Error()}
	}
	return t, nil
}

// affinity maps a declared type to a key Type using SQLite's affinity rules.
// Returns "" for REAL, NUMERIC and BLOB affinities.
func affinity(declType string) Type {
	upper := strings.ToUpper(declType)
	switch {
	case strings.Contains(upper, "INT"):
		return Integer
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		return Text
	default:
		return ""
	}
}
