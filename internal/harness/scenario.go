package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/successar/multikeydb/internal/schema"
)

// Scenario is a scripted sequence of store operations with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tables are created, in order, before the first step runs.
	Tables []TableDecl `yaml:"tables"`

	// Steps run in order against the same store.
	Steps []Step `yaml:"steps"`
}

// TableDecl declares one table and its ordered key columns.
type TableDecl struct {
	Name string          `yaml:"name"`
	Keys []schema.Column `yaml:"keys"`
}

// Step is one store operation.
type Step struct {
	// Op is one of the Op constants.
	Op string `yaml:"op"`

	// Table is the addressed table. Not used by dump.
	Table string `yaml:"table,omitempty"`

	// Keys maps key columns to integers or strings.
	Keys map[string]any `yaml:"keys,omitempty"`

	// Value is the payload written by upsert. A YAML null is a JSON null.
	Value yaml.Node `yaml:"value,omitempty"`

	// Expect is the value get must return, or the number count must return.
	Expect yaml.Node `yaml:"expect,omitempty"`

	// Absent requires get to find no record.
	Absent bool `yaml:"absent,omitempty"`

	// ExpectRows lists the rows filter or dump must return, in order.
	ExpectRows []map[string]any `yaml:"expect_rows,omitempty"`

	// ExpectError is the lower-case store error code the step must fail
	// with. Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpUpsert = "upsert"
	OpGet    = "get"
	OpFilter = "filter"
	OpDelete = "delete"
	OpCount  = "count"
	OpDump   = "dump"
)

// HasValue reports whether the step sets value.
func (s Step) HasValue() bool { return s.Value.Kind != 0 }

// HasExpect reports whether the step sets expect.
func (s Step) HasExpect() bool { return s.Expect.Kind != 0 }

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expect_row:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Tables {
		t := &s.Tables[i]
		for j := range t.Keys {
			typ, err := schema.ParseType(string(t.Keys[j].Type))
			if err != nil {
				return fmt.Errorf("tables[%d].keys[%d]: %w", i, j, err)
			}
			t.Keys[j].Type = typ
		}
		if _, err := schema.NewTable(t.Name, t.Keys); err != nil {
			return fmt.Errorf("tables[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, s Step) error {
	if s.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if s.Op != OpDump && s.Table == "" {
		return fmt.Errorf("steps[%d]: table is required for %s", index, s.Op)
	}

	switch s.Op {
	case OpUpsert:
		if !s.HasValue() {
			return fmt.Errorf("steps[%d]: value is required for upsert", index)
		}
	case OpGet:
		if s.Absent && s.HasExpect() {
			return fmt.Errorf("steps[%d]: absent and expect are mutually exclusive", index)
		}
	case OpCount:
		if !s.HasExpect() && s.ExpectError == "" {
			return fmt.Errorf("steps[%d]: expect is required for count", index)
		}
	case OpFilter, OpDelete, OpDump:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}
