package schema

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/successar/multikeydb/internal/value"
)

// ValueColumn is the reserved payload column present in every table.
const ValueColumn = "value"

// Type is the type tag of a key column.
type Type string

const (
	// Integer columns hold value.Int keys.
	Integer Type = "integer"
	// Text columns hold value.String keys.
	Text Type = "text"
)

// ParseType parses a type tag. "int" and "str" are accepted as aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return Integer, nil
	case "text", "str", "string":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown column type %q: must be integer or text", s)
	}
}

// SQLType returns the declared SQLite column type.
func (t Type) SQLType() string {
	if t == Integer {
		return "INTEGER"
	}
	return "VARCHAR"
}

// Accepts reports whether k may be stored in a column of this type.
func (t Type) Accepts(k value.Key) bool {
	switch k.(type) {
	case value.Int:
		return t == Integer
	case value.String:
		return t == Text
	default:
		return false
	}
}

// Column is a typed key column.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

func (c Column) String() string {
	return c.Name + ":" + string(c.Type)
}

// Table is an immutable table definition.
type Table struct {
	Name string
	keys []Column
}

// NewTable validates and builds a table definition.
// Key order is preserved and becomes the primary key order.
func NewTable(name string, keys []Column) (Table, error) {
	if err := ValidateTableName(name); err != nil {
		return Table{}, err
	}
	if len(keys) == 0 {
		return Table{}, &ValidationError{Kind: KindTable, Name: name, Message: "at least one key column is required"}
	}

	seen := make(map[string]bool, len(keys))
	for _, col := range keys {
		if err := ValidateColumnName(col.Name); err != nil {
			return Table{}, err
		}
		if strings.EqualFold(col.Name, ValueColumn) {
			return Table{}, &ValidationError{Kind: KindColumn, Name: col.Name, Message: "column name is reserved for the payload"}
		}
		if col.Type != Integer && col.Type != Text {
			return Table{}, &ValidationError{Kind: KindColumn, Name: col.Name, Message: fmt.Sprintf("unsupported type %q", col.Type)}
		}
		folded := foldName(col.Name)
		if seen[folded] {
			return Table{}, &ValidationError{Kind: KindColumn, Name: col.Name, Message: "duplicate key column"}
		}
		seen[folded] = true
	}

	return Table{Name: name, keys: slices.Clone(keys)}, nil
}

// Keys returns the key columns in declaration order.
func (t Table) Keys() []Column {
	return slices.Clone(t.keys)
}

// KeyNames returns the key column names in declaration order.
func (t Table) KeyNames() []string {
	names := make([]string, len(t.keys))
	for i, c := range t.keys {
		names[i] = c.Name
	}
	return names
}

// ColumnNames returns every physical column: key columns then "value".
func (t Table) ColumnNames() []string {
	return append(t.KeyNames(), ValueColumn)
}

// Key looks up a key column by name.
func (t Table) Key(name string) (Column, bool) {
	for _, c := range t.keys {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SameKeys reports whether both tables declare identical key columns in the
// same order.
func (t Table) SameKeys(other Table) bool {
	return slices.Equal(t.keys, other.keys)
}

func (t Table) String() string {
	parts := make([]string, len(t.keys))
	for i, c := range t.keys {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ", "))
}

// ValidationKind tells which identifier a ValidationError refers to.
type ValidationKind string

const (
	KindTable  ValidationKind = "table"
	KindColumn ValidationKind = "column"
)

// ValidationError reports an invalid table or column declaration.
type ValidationError struct {
	Kind    ValidationKind
	Name    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Name, e.Message)
}

// ValidateTableName checks a table identifier.
func ValidateTableName(name string) error {
	if msg := identifierProblem(name); msg != "" {
		return &ValidationError{Kind: KindTable, Name: name, Message: msg}
	}
	if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return &ValidationError{Kind: KindTable, Name: name, Message: "names starting with sqlite_ are reserved"}
	}
	return nil
}

// ValidateColumnName checks a column identifier.
func ValidateColumnName(name string) error {
	if msg := identifierProblem(name); msg != "" {
		return &ValidationError{Kind: KindColumn, Name: name, Message: msg}
	}
	return nil
}

// identifierProblem returns "" for an acceptable identifier. Identifiers must
// be NFC so that canonically equivalent spellings cannot name two different
// tables or columns.
func identifierProblem(name string) string {
	switch {
	case name == "":
		return "name is required"
	case !utf8.ValidString(name):
		return "name must be valid UTF-8"
	case strings.ContainsRune(name, 0):
		return "name must not contain NUL"
	case !norm.NFC.IsNormalString(name):
		return "name must be NFC normalized"
	}
	return ""
}
