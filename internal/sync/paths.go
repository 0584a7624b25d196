package sync

import (
	"path/filepath"
	"strings"
)

// companionPaths derives the base-snapshot and JSON-schema companion paths
// for a user-facing dump at outputPath: the schema file sits next to
// the output file, the base snapshot sits in a sibling .db-editor/
// directory, and both references are embedded as relative paths so the
// dump stays portable if the whole directory moves.
type companionPaths struct {
	SchemaAbs string
	SchemaRel string
	BaseAbs   string
	BaseRel   string
}

func newCompanionPaths(outputPath string) companionPaths {
	dir := filepath.Dir(outputPath)
	stem := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))

	schemaAbs := filepath.Join(dir, stem+".schema.json")
	baseAbs := filepath.Join(dir, ".db-editor", stem+".base.json")

	return companionPaths{
		SchemaAbs: schemaAbs,
		SchemaRel: "./" + filepath.Base(schemaAbs),
		BaseAbs:   baseAbs,
		BaseRel:   "./" + filepath.Join(".db-editor", filepath.Base(baseAbs)),
	}
}

// resolveBasePath resolves a $base reference found inside a user-facing
// file (baseRef) relative to that file's own directory.
func resolveBasePath(inputPath, baseRef string) string {
	if filepath.IsAbs(baseRef) {
		return baseRef
	}
	return filepath.Join(filepath.Dir(inputPath), baseRef)
}
