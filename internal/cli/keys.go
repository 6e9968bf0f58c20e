package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/store"
	"github.com/successar/multikeydb/internal/value"
)

// parseKeys turns col=val pairs into store keys, typed by the table's
// declared columns. Values for integer columns that do not parse, and
// columns the table does not have, are passed through as strings so the
// store reports them as invalid keys.
func parseKeys(st *store.Store, table string, pairs []string) (store.Keys, error) {
	t, known := st.Table(table)

	keys := make(store.Keys, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --key %q: expected column=value", pair)
		}
		if _, dup := keys[name]; dup {
			return nil, fmt.Errorf("duplicate --key for column %q", name)
		}
		keys[name] = value.String(raw)

		if !known {
			continue
		}
		if col, ok := t.Key(name); ok && col.Type == schema.Integer {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				keys[name] = value.Int(n)
			}
		}
	}
	return keys, nil
}

// parseColumn parses a name:type column declaration. The type defaults to
// text when omitted.
func parseColumn(s string) (schema.Column, error) {
	name, typ, ok := strings.Cut(s, ":")
	if !ok {
		return schema.Column{Name: s, Type: schema.Text}, nil
	}
	t, err := schema.ParseType(typ)
	if err != nil {
		return schema.Column{}, fmt.Errorf("column %s: %w", name, err)
	}
	return schema.Column{Name: name, Type: t}, nil
}

// plain converts a value for JSON or YAML output.
func plain(v value.Value) any {
	return value.ToAny(v)
}

// canonical renders v as canonical JSON for text output.
func canonical(v value.Value) string {
	s, err := value.EncodeString(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

func rowsToAny(rows []store.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = plain(value.Object(r))
	}
	return out
}
