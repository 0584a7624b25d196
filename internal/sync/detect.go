package sync

import (
	"encoding/json"

	"dbjson/internal/dataset"
	"dbjson/internal/errs"
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
)

// parseInput auto-detects whether data is a flat- or nested-layout
// user-facing document and returns it flattened, along with the
// raw $schema / $base references found.
//
// Flat documents key every table (root and non-root) by its native name;
// nested documents key only root tables, spelled camelCase. A schema with
// every table at root level (no FKs at all) makes the two layouts
// indistinguishable by key set alone — flat parsing is tried first in that
// case, which is lossless either way since there are no FK columns to omit.
func parseInput(data []byte, s *schema.Schema, tree *ownership.Tree) (flat *dataset.FlatDataset, schemaRef, baseRef string, refs []dataset.UnresolvedRef, err error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, "", "", nil, errs.Wrap(errs.KindParseError, "decode input document", err)
	}

	flatMatch, nestedMatch := true, true
	rootCamel := make(map[string]bool, len(tree.Roots))
	for _, r := range tree.Roots {
		rootCamel[dataset.ToCamelCase(r)] = true
	}

	for key := range probe {
		if key == "$schema" || key == "$base" {
			continue
		}
		if !s.HasTable(key) {
			flatMatch = false
		}
		if !rootCamel[key] {
			nestedMatch = false
		}
	}

	switch {
	case flatMatch && nestedMatch && len(tree.Roots) < len(s.Tables):
		// Every key is a root table whose camelCase spelling is its native
		// name. A flat dump also lists the non-root tables, so with at least
		// one dominant edge in the schema this key set is a nested document.
		return unmarshalNestedInput(data, s, tree)
	case flatMatch:
		flat, schemaRef, baseRef, err = UnmarshalFlatInput(data)
		return flat, schemaRef, baseRef, nil, err
	case nestedMatch:
		return unmarshalNestedInput(data, s, tree)
	default:
		return nil, "", "", nil, errs.New(errs.KindParseError, "input document matches neither flat nor nested layout for this schema")
	}
}

// UnmarshalFlatInput parses a flat-layout document as-is.
func UnmarshalFlatInput(data []byte) (*dataset.FlatDataset, string, string, error) {
	return dataset.UnmarshalFlatDocument(data)
}

func unmarshalNestedInput(data []byte, s *schema.Schema, tree *ownership.Tree) (*dataset.FlatDataset, string, string, []dataset.UnresolvedRef, error) {
	nested, schemaRef, baseRef, err := dataset.UnmarshalNestedDocument(data, s, tree)
	if err != nil {
		return nil, "", "", nil, err
	}
	flat, refs, err := dataset.Flatten(nested, s, tree)
	if err != nil {
		return nil, "", "", nil, err
	}
	return flat, schemaRef, baseRef, refs, nil
}
