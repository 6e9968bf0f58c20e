package queryir

import "github.com/successar/multikeydb/internal/value"

// Statement is a sealed interface implemented by the statement types of this
// package.
type Statement interface {
	statementNode()
}

// Predicate is a sealed interface implemented by Equals and And.
type Predicate interface {
	predicateNode()
}

// ColumnDef declares one physical column for CreateTable.
// SQLType is the backend type name (e.g. "INTEGER", "VARCHAR").
type ColumnDef struct {
	Name    string
	SQLType string
}

// CreateTable creates a table whose primary key spans PrimaryKey.
//
//	CREATE TABLE [IF NOT EXISTS] <name> (<columns>, PRIMARY KEY (<pk>))
type CreateTable struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKey  []string
	IfNotExists bool
}

func (CreateTable) statementNode() {}

// Select reads Columns from a table.
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order>
//
// Columns must be explicit. A nil Filter matches every row. OrderBy lists
// columns used for a deterministic result order.
type Select struct {
	From    string
	Columns []string
	Filter  Predicate
	OrderBy []string
}

func (Select) statementNode() {}

// Count counts the rows matching Filter.
type Count struct {
	From   string
	Filter Predicate
}

func (Count) statementNode() {}

// Insert adds a single row. Columns and Values are positional.
type Insert struct {
	Into    string
	Columns []string
	Values  []value.Value
}

func (Insert) statementNode() {}

// Assignment sets Column to Value in an Update.
type Assignment struct {
	Column string
	Value  value.Value
}

// Update rewrites the Set columns of every row matching Filter.
type Update struct {
	Table  string
	Set    []Assignment
	Filter Predicate
}

func (Update) statementNode() {}

// Delete removes every row matching Filter.
type Delete struct {
	From   string
	Filter Predicate
}

func (Delete) statementNode() {}

// Equals matches rows whose Field equals Value.
//
//	<field> = ?
//
// Value must be a scalar (Int, String, Bool or Float).
type Equals struct {
	Field string
	Value value.Value
}

func (Equals) predicateNode() {}

// And matches rows satisfying every predicate in Predicates.
// An empty And is vacuously true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// MatchAll returns the predicate matching every row.
func MatchAll() Predicate {
	return And{}
}

// EqualsAll builds the conjunction of Equals predicates for fields, taking
// values from vals. Fields are used in the given order so the compiled
// statement is deterministic.
func EqualsAll[V value.Value](fields []string, vals map[string]V) Predicate {
	preds := make([]Predicate, 0, len(fields))
	for _, f := range fields {
		v, ok := vals[f]
		if !ok {
			continue
		}
		preds = append(preds, Equals{Field: f, Value: v})
	}
	return And{Predicates: preds}
}
