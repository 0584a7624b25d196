package sync

import (
	"encoding/json"
	"sort"
	"strings"

	"dbjson/internal/dataset"
	"dbjson/internal/schema"
)

// generateJSONSchema renders a JSON Schema (draft-07) describing the shape
// a user-facing dump file of the given layout must take, for editor
// autocomplete. The core's only obligation is that its own output
// validates against what it generates here — it does not need to model
// every column constraint, just the document shape.
func generateJSONSchema(s *schema.Schema, nested bool) ([]byte, error) {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	props := map[string]any{
		"$schema": map[string]any{"type": "string"},
		"$base":   map[string]any{"type": "string"},
	}

	for _, name := range names {
		tbl := s.Tables[name]
		key := name
		if nested {
			key = dataset.ToCamelCase(name)
		}
		props[key] = map[string]any{
			"type":  "array",
			"items": rowSchema(tbl, nested),
		}
	}

	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      "dbjson dump file",
		"type":       "object",
		"properties": props,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func rowSchema(tbl *schema.Table, nested bool) map[string]any {
	columnProps := map[string]any{}
	for _, c := range tbl.Columns {
		columnProps[c.Name] = map[string]any{"type": columnJSONType(c)}
	}

	if !nested {
		return map[string]any{
			"type":       "object",
			"properties": columnProps,
		}
	}

	return map[string]any{
		"type": "object",
		"oneOf": []any{
			map[string]any{"type": "object", "properties": columnProps},
			map[string]any{"type": "object", "properties": map[string]any{"$ref": map[string]any{"const": true}}},
			map[string]any{"type": "object", "properties": map[string]any{"$partial": map[string]any{"const": true}}},
		},
	}
}

// columnJSONType guesses a JSON Schema primitive type from the column's
// native type name. A wrong guess only costs an editor a missed
// autocomplete hint — the core's own serialization is the source of truth.
func columnJSONType(c *schema.Column) string {
	t := strings.ToLower(c.Type)
	switch {
	case c.IsNullable:
		return "any"
	case strings.Contains(t, "int") || strings.Contains(t, "numeric") ||
		strings.Contains(t, "float") || strings.Contains(t, "double") ||
		strings.Contains(t, "real") || strings.Contains(t, "decimal"):
		return "number"
	case strings.Contains(t, "bool"):
		return "boolean"
	case strings.Contains(t, "json"):
		return "object"
	default:
		return "string"
	}
}
