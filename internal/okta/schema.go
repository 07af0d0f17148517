// internal/okta/schema.go
package okta

import (
	"encoding/json"
	"fmt"
	"strconv"

	jmes "github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed schemas.yaml
var schemasYAML []byte

// Column is one entry of a flatten schema: the CSV header name, the
// JMESPath to extract the value from a raw resource, a default used
// when the path yields nothing, and whether to render the value as
// compact JSON (for nested objects kept whole, e.g. app credentials).
type Column struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Default string `yaml:"default"`
	JSON    bool   `yaml:"json"`

	expr *jmes.JMESPath
}

// Schema is the ordered column set for one resource kind. The order is
// the CSV column order and never varies between rows or runs.
type Schema struct {
	Columns []Column
}

var schemas = mustSchemas()

func mustSchemas() map[string]Schema {
	var raw map[string][]Column
	if err := yaml.Unmarshal(schemasYAML, &raw); err != nil {
		panic(fmt.Sprintf("okta: parse schemas.yaml: %v", err))
	}
	out := make(map[string]Schema, len(raw))
	for kind, cols := range raw {
		for i := range cols {
			expr, err := jmes.Compile(cols[i].Path)
			if err != nil {
				panic(fmt.Sprintf("okta: schema %s column %s: %v", kind, cols[i].Name, err))
			}
			cols[i].expr = expr
		}
		out[kind] = Schema{Columns: cols}
	}
	return out
}

// schemaFor returns the flatten schema for a kind. Kinds are fixed at
// compile time; a miss is a programming error.
func schemaFor(kind string) Schema {
	s, ok := schemas[kind]
	if !ok {
		panic("okta: unknown schema kind " + kind)
	}
	return s
}

// Header returns the column names in schema order.
func (s Schema) Header() []string {
	h := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		h[i] = c.Name
	}
	return h
}

// FlattenAll projects each raw resource into one row.
func (s Schema) FlattenAll(items []map[string]any) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, s.Flatten(it))
	}
	return rows
}

// Flatten projects one raw resource into a row. Absent fields become
// the column default (empty string), never a dropped column.
func (s Schema) Flatten(item map[string]any) []string {
	row := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		v, err := c.expr.Search(item)
		if err != nil || v == nil {
			row[i] = c.Default
			continue
		}
		row[i] = c.render(v)
	}
	return row
}

func (c Column) render(v any) string {
	if c.JSON {
		b, err := json.Marshal(v)
		if err != nil {
			return c.Default
		}
		return string(b)
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		// Nested value on a scalar column: keep it readable rather
		// than dropping it.
		b, err := json.Marshal(t)
		if err != nil {
			return c.Default
		}
		return string(b)
	}
}
