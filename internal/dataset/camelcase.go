package dataset

import (
	"strings"

	"dbjson/internal/schema"
)

// ToCamelCase converts a table name to camelCase for use as a nested-document
// key: snake_case segments are joined camelCase, and a single-word name
// (including PascalCase, the common case for TypeORM-style entity tables)
// has only its leading rune lowercased — "Organization" becomes
// "organization", "OrganizationType" becomes "organizationType". Exported
// because internal/sync's JSON-schema companion generator needs the same
// mapping for nested-layout dumps.
func ToCamelCase(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		if name == "" {
			return name
		}
		return strings.ToLower(name[:1]) + name[1:]
	}
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(p))
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}

func toCamelCase(name string) string { return ToCamelCase(name) }

// camelIndex maps every camelCase table-name spelling back to its native
// name, built once per schema so the flattener can resolve nested-document
// keys without repeated scanning.
func camelIndex(s *schema.Schema) map[string]string {
	idx := make(map[string]string, len(s.Tables))
	for name := range s.Tables {
		idx[toCamelCase(name)] = name
	}
	return idx
}
