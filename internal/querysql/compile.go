// Package querysql compiles queryir statements to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/successar/multikeydb/internal/queryir"
	"github.com/successar/multikeydb/internal/value"
)

// Compiler compiles queryir statements to SQL for SQLite.
//
// All identifiers are double-quoted and every literal becomes a ? parameter;
// values are never interpolated into the SQL text. Select statements with an
// OrderBy list sort with COLLATE BINARY so results are identical across
// SQLite builds.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile converts a statement to SQL.
// Returns (sql, params, error).
func (c *Compiler) Compile(stmt queryir.Statement) (string, []any, error) {
	if err := queryir.Validate(stmt); err != nil {
		return "", nil, err
	}

	switch s := stmt.(type) {
	case queryir.CreateTable:
		return c.compileCreateTable(s), nil, nil
	case queryir.Select:
		return c.compileSelect(s)
	case queryir.Count:
		where, params, err := c.compileWhere(s.Filter)
		if err != nil {
			return "", nil, err
		}
		return "SELECT COUNT(*) FROM " + QuoteIdent(s.From) + where, params, nil
	case queryir.Insert:
		return c.compileInsert(s)
	case queryir.Update:
		return c.compileUpdate(s)
	case queryir.Delete:
		where, params, err := c.compileWhere(s.Filter)
		if err != nil {
			return "", nil, err
		}
		return "DELETE FROM " + QuoteIdent(s.From) + where, params, nil
	default:
		return "", nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

func (c *Compiler) compileCreateTable(s queryir.CreateTable) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if s.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(QuoteIdent(s.Name))
	b.WriteString(" (")
	for i, col := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(QuoteIdent(col.Name))
		b.WriteByte(' ')
		b.WriteString(col.SQLType)
	}
	if len(s.PrimaryKey) > 0 {
		b.WriteString(", PRIMARY KEY (")
		b.WriteString(quoteList(s.PrimaryKey))
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

func (c *Compiler) compileSelect(s queryir.Select) (string, []any, error) {
	where, params, err := c.compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT " + quoteList(s.Columns) + " FROM " + QuoteIdent(s.From) + where
	if len(s.OrderBy) > 0 {
		parts := make([]string, len(s.OrderBy))
		for i, col := range s.OrderBy {
			parts[i] = QuoteIdent(col) + " COLLATE BINARY ASC"
		}
		sql += " ORDER BY " + strings.Join(parts, ", ")
	}
	return sql, params, nil
}

func (c *Compiler) compileInsert(s queryir.Insert) (string, []any, error) {
	params := make([]any, len(s.Values))
	for i, v := range s.Values {
		p, err := valueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("insert column %q: %w", s.Columns[i], err)
		}
		params[i] = p
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.Values)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", QuoteIdent(s.Into), quoteList(s.Columns), placeholders)
	return sql, params, nil
}

func (c *Compiler) compileUpdate(s queryir.Update) (string, []any, error) {
	sets := make([]string, len(s.Set))
	params := make([]any, 0, len(s.Set))
	for i, a := range s.Set {
		p, err := valueToParam(a.Value)
		if err != nil {
			return "", nil, fmt.Errorf("update column %q: %w", a.Column, err)
		}
		sets[i] = QuoteIdent(a.Column) + " = ?"
		params = append(params, p)
	}

	where, whereParams, err := c.compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}
	sql := "UPDATE " + QuoteIdent(s.Table) + " SET " + strings.Join(sets, ", ") + where
	return sql, append(params, whereParams...), nil
}

// compileWhere returns " WHERE ..." or "" when the filter matches every row.
func (c *Compiler) compileWhere(p queryir.Predicate) (string, []any, error) {
	sql, params, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	if sql == "" {
		return "", nil, nil
	}
	return " WHERE " + sql, params, nil
}

// compilePredicate returns "" for a predicate that is always true.
func (c *Compiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case queryir.Equals:
		param, err := valueToParam(pred.Value)
		if err != nil {
			return "", nil, fmt.Errorf("column %q: %w", pred.Field, err)
		}
		return QuoteIdent(pred.Field) + " = ?", []any{param}, nil
	case queryir.And:
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := c.compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// QuoteIdent quotes an SQLite identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// valueToParam converts a scalar value to a Go native SQL parameter.
// Arrays and objects have no column representation and are rejected;
// callers encode payloads to value.String first.
func valueToParam(v value.Value) (any, error) {
	switch val := v.(type) {
	case value.String:
		return string(val), nil
	case value.Int:
		return int64(val), nil
	case value.Bool:
		return bool(val), nil
	case value.Float:
		return float64(val), nil
	case value.Null:
		return nil, nil
	case value.Array, value.Object:
		return nil, fmt.Errorf("%T cannot be used as SQL parameter directly", v)
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
