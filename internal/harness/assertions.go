package harness

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/successar/multikeydb/internal/store"
	"github.com/successar/multikeydb/internal/value"
)

// convertKeys turns YAML key values into store keys. Integers become
// value.Int and strings value.String; anything else is rejected.
func convertKeys(raw map[string]any) (store.Keys, error) {
	keys := make(store.Keys, len(raw))
	for name, v := range raw {
		switch k := v.(type) {
		case int:
			keys[name] = value.Int(k)
		case int64:
			keys[name] = value.Int(k)
		case string:
			keys[name] = value.String(k)
		default:
			return nil, fmt.Errorf("key %s: unsupported key type %T", name, v)
		}
	}
	return keys, nil
}

// nodeValue decodes a YAML node into a value. A null node is value.Null.
func nodeValue(n *yaml.Node) (value.Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return value.FromAny(raw)
}

// errorName is the scenario spelling of a store error code.
func errorName(err error) string {
	return strings.ToLower(string(store.CodeOf(err)))
}

// checkError compares err with the step's expect_error. It returns nil when
// they agree.
func checkError(step Step, err error) []string {
	switch {
	case step.ExpectError == "" && err != nil:
		return []string{fmt.Sprintf("unexpected error: %v", err)}
	case step.ExpectError != "" && err == nil:
		return []string{fmt.Sprintf("expected error %s, got success", step.ExpectError)}
	case step.ExpectError != "" && errorName(err) != step.ExpectError:
		return []string{fmt.Sprintf("expected error %s, got %v", step.ExpectError, err)}
	}
	return nil
}

func checkGet(step Step, got value.Value, found bool) []string {
	if step.Absent {
		if found {
			return []string{fmt.Sprintf("expected no record, got %s", render(got))}
		}
		return nil
	}
	if !found {
		return []string{"record not found"}
	}
	if !step.HasExpect() {
		return nil
	}
	want, err := nodeValue(&step.Expect)
	if err != nil {
		return []string{fmt.Sprintf("expect: %v", err)}
	}
	if !value.Equal(want, got) {
		return []string{fmt.Sprintf("expected %s, got %s", render(want), render(got))}
	}
	return nil
}

func checkCount(step Step, n int64) []string {
	var want int64
	if err := step.Expect.Decode(&want); err != nil {
		return []string{fmt.Sprintf("expect: count must be an integer: %v", err)}
	}
	if want != n {
		return []string{fmt.Sprintf("expected %d records, got %d", want, n)}
	}
	return nil
}

// checkRows compares rows with the expected rows, in order. A nil expected
// list skips the check.
func checkRows(expected []map[string]any, got []value.Object) []string {
	if expected == nil {
		return nil
	}

	var errs []string
	if len(expected) != len(got) {
		errs = append(errs, fmt.Sprintf("expected %d rows, got %d", len(expected), len(got)))
	}
	for i := 0; i < len(expected) && i < len(got); i++ {
		want, err := value.FromAny(expected[i])
		if err != nil {
			errs = append(errs, fmt.Sprintf("expect_rows[%d]: %v", i, err))
			continue
		}
		if !value.Equal(want, got[i]) {
			errs = append(errs, fmt.Sprintf("row %d: expected %s, got %s", i, render(want), render(got[i])))
		}
	}
	return errs
}

// render formats v as canonical JSON for messages.
func render(v value.Value) string {
	s, err := value.EncodeString(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return s
}
