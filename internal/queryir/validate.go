package queryir

import (
	"fmt"

	"github.com/successar/multikeydb/internal/value"
)

// Validate checks the structural rules of a statement before compilation:
// names are non-empty, column lists are explicit and positional lists line
// up. It does not consult any schema.
//
// Validate is a pure function with no side effects.
func Validate(stmt Statement) error {
	switch s := stmt.(type) {
	case nil:
		return fmt.Errorf("nil statement")
	case CreateTable:
		return validateCreateTable(s)
	case Select:
		if s.From == "" {
			return fmt.Errorf("select: table name is required")
		}
		if len(s.Columns) == 0 {
			return fmt.Errorf("select: explicit columns are required")
		}
		if err := checkNames("select column", s.Columns); err != nil {
			return err
		}
		if err := checkNames("select order", s.OrderBy); err != nil {
			return err
		}
		return validatePredicate(s.Filter)
	case Count:
		if s.From == "" {
			return fmt.Errorf("count: table name is required")
		}
		return validatePredicate(s.Filter)
	case Insert:
		if s.Into == "" {
			return fmt.Errorf("insert: table name is required")
		}
		if len(s.Columns) == 0 {
			return fmt.Errorf("insert: columns are required")
		}
		if len(s.Columns) != len(s.Values) {
			return fmt.Errorf("insert: %d columns but %d values", len(s.Columns), len(s.Values))
		}
		return checkNames("insert column", s.Columns)
	case Update:
		if s.Table == "" {
			return fmt.Errorf("update: table name is required")
		}
		if len(s.Set) == 0 {
			return fmt.Errorf("update: at least one assignment is required")
		}
		for i, a := range s.Set {
			if a.Column == "" {
				return fmt.Errorf("update: set[%d]: column is required", i)
			}
		}
		return validatePredicate(s.Filter)
	case Delete:
		if s.From == "" {
			return fmt.Errorf("delete: table name is required")
		}
		return validatePredicate(s.Filter)
	default:
		return fmt.Errorf("unknown statement type: %T", stmt)
	}
}

func validateCreateTable(s CreateTable) error {
	if s.Name == "" {
		return fmt.Errorf("create table: name is required")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("create table: columns are required")
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" || c.SQLType == "" {
			return fmt.Errorf("create table: column[%d]: name and type are required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("create table: duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	for _, pk := range s.PrimaryKey {
		if !seen[pk] {
			return fmt.Errorf("create table: primary key column %q is not declared", pk)
		}
	}
	return nil
}

func validatePredicate(p Predicate) error {
	switch pred := p.(type) {
	case nil:
		return nil
	case Equals:
		if pred.Field == "" {
			return fmt.Errorf("equals: field is required")
		}
		switch pred.Value.(type) {
		case value.Int, value.String, value.Bool, value.Float:
			return nil
		default:
			return fmt.Errorf("equals %q: value must be a scalar, got %T", pred.Field, pred.Value)
		}
	case And:
		for i, sub := range pred.Predicates {
			if err := validatePredicate(sub); err != nil {
				return fmt.Errorf("and[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown predicate type: %T", p)
	}
}

func checkNames(what string, names []string) error {
	for i, n := range names {
		if n == "" {
			return fmt.Errorf("%s[%d]: name is required", what, i)
		}
	}
	return nil
}
