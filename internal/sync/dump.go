package sync

import (
	"context"

	"dbjson/internal/dataset"
	"dbjson/internal/errs"
)

// DumpOptions parameterizes Dump.
type DumpOptions struct {
	OutputPath string

	// Limit caps root-level (nested) or per-table (flat) row counts in the
	// user-facing file. The base snapshot is always a separate, untruncated
	// full fetch regardless of Limit.
	Limit *int

	// NestedLimit caps row counts at every level below the root, nested
	// layout only.
	NestedLimit *int

	// Flat, when true, writes the user-facing file in flat layout instead
	// of the default nested layout.
	Flat bool

	// NoBase suppresses writing the base-snapshot companion file.
	NoBase bool
}

// Dump fetches the full dataset and writes a sibling JSON-schema file, the
// user-facing file (flat or nested per opts.Flat), and — unless opts.NoBase
// — an untruncated flat base-snapshot file. The user-facing file embeds a
// relative reference to the schema file and, when one is written, to the
// base snapshot.
func (o *Orchestrator) Dump(ctx context.Context, opts DumpOptions) error {
	full, err := dataset.Fetch(ctx, o.Conn, o.Schema)
	if err != nil {
		return err
	}

	paths := newCompanionPaths(opts.OutputPath)

	schemaDoc, err := generateJSONSchema(o.Schema, !opts.Flat)
	if err != nil {
		return errs.Wrap(errs.KindParseError, "generate json-schema companion", err)
	}
	if err := writeFileAtomic(o.FS, paths.SchemaAbs, schemaDoc); err != nil {
		return err
	}

	baseRef := ""
	if !opts.NoBase {
		baseDoc, err := full.MarshalDocument(paths.SchemaRel, "")
		if err != nil {
			return errs.Wrap(errs.KindParseError, "marshal base snapshot", err)
		}
		if err := writeFileAtomic(o.FS, paths.BaseAbs, baseDoc); err != nil {
			return err
		}
		baseRef = paths.BaseRel
	}

	userDoc, err := o.renderUserFacing(full, opts, paths.SchemaRel, baseRef)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(o.FS, opts.OutputPath, userDoc); err != nil {
		return err
	}

	if o.Log != nil {
		o.Log.Infof("dump written to %s (base=%v)", opts.OutputPath, baseRef != "")
	}

	if o.Archive != nil && o.ArchiveBucket != "" {
		if err := o.pushArchive(ctx, opts.OutputPath, paths); err != nil {
			return err
		}
	}

	return nil
}

// renderUserFacing builds the layout-specific user-facing document. Flat
// layout has no marker concept, so a Limit on a flat dump simply
// drops the excess rows — it cannot record a skip count in the format
// itself, only in the log.
func (o *Orchestrator) renderUserFacing(full *dataset.FlatDataset, opts DumpOptions, schemaRef, baseRef string) ([]byte, error) {
	if opts.Flat {
		limited, skipped := truncateFlat(full, opts.Limit)
		if o.Log != nil {
			for table, n := range skipped {
				o.Log.Warnf("flat dump truncated table %s: %d row(s) skipped (no $partial marker in flat layout)", table, n)
			}
		}
		return limited.MarshalDocument(schemaRef, baseRef)
	}

	nested, err := dataset.Nest(full, o.Schema, o.Tree, dataset.NestOptions{Limit: opts.Limit, NestedLimit: opts.NestedLimit})
	if err != nil {
		return nil, err
	}
	return nested.MarshalDocument(schemaRef, baseRef)
}

// truncateFlat returns a copy of full with each table capped at limit rows,
// plus the per-table skip counts (for logging only — see renderUserFacing).
func truncateFlat(full *dataset.FlatDataset, limit *int) (*dataset.FlatDataset, map[string]int) {
	if limit == nil {
		return full, nil
	}

	out := &dataset.FlatDataset{Tables: make(map[string][]dataset.FlatRow, len(full.Tables))}
	skipped := map[string]int{}
	for table, rows := range full.Tables {
		if len(rows) > *limit {
			out.Tables[table] = rows[:*limit]
			skipped[table] = len(rows) - *limit
		} else {
			out.Tables[table] = rows
		}
	}
	return out, skipped
}
