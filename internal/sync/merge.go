package sync

import (
	"context"
	"path/filepath"

	"dbjson/internal/dataset"
	"dbjson/internal/diff"
	"dbjson/internal/errs"
)

// PreviewOptions parameterizes Preview and Sync.
type PreviewOptions struct {
	InputPath string
}

// ResetOptions parameterizes Reset.
type ResetOptions struct {
	InputPath string
}

// Preview parses the input file, resolves the three-way/two-way base, and
// returns the resulting change set without touching the database.
func (o *Orchestrator) Preview(ctx context.Context, opts PreviewOptions) (diff.ChangeSet, error) {
	_, changes, err := o.computeChangeSet(ctx, opts.InputPath)
	return changes, err
}

// Sync computes the three-way (or, absent a base, two-way) change set,
// applies it inside one transaction, and — only after a successful commit
// — rewrites the base snapshot to reflect the newly-synced state.
func (o *Orchestrator) Sync(ctx context.Context, opts PreviewOptions) (diff.ChangeSet, error) {
	edited, changes, err := o.computeChangeSet(ctx, opts.InputPath)
	if err != nil {
		return nil, err
	}

	if err := o.apply(ctx, changes); err != nil {
		return nil, err
	}

	if err := o.rewriteBaseAfterSync(opts.InputPath, edited); err != nil {
		return changes, err
	}

	if o.Log != nil {
		o.Log.Sync("sync", countKind(changes, diff.Insert), countKind(changes, diff.Update), countKind(changes, diff.Delete))
	}
	return changes, nil
}

// Reset always diffs the live database against the edited file — the
// explicit two-way escape hatch when no base snapshot is trusted or
// available. Rows present in the database but absent from the file
// are deleted.
func (o *Orchestrator) Reset(ctx context.Context, opts ResetOptions) (diff.ChangeSet, error) {
	raw, err := readFile(o.FS, opts.InputPath)
	if err != nil {
		return nil, err
	}
	edited, _, _, refs, err := parseInput(raw, o.Schema, o.Tree)
	if err != nil {
		return nil, err
	}

	if err := o.checkUnresolvedRefs(ctx, edited, refs); err != nil {
		return nil, err
	}

	live, err := dataset.Fetch(ctx, o.Conn, o.Schema)
	if err != nil {
		return nil, err
	}

	changes := diff.Diff(o.Schema, live, edited)
	if err := o.apply(ctx, changes); err != nil {
		return nil, err
	}

	if o.Log != nil {
		o.Log.Sync("reset", countKind(changes, diff.Insert), countKind(changes, diff.Update), countKind(changes, diff.Delete))
	}
	return changes, nil
}

// computeChangeSet implements the three-way/two-way selection shared by
// Preview and Sync: base-diff when the file references an existing
// base snapshot, otherwise a direct database diff.
func (o *Orchestrator) computeChangeSet(ctx context.Context, inputPath string) (edited *dataset.FlatDataset, changes diff.ChangeSet, err error) {
	raw, err := readFile(o.FS, inputPath)
	if err != nil {
		return nil, nil, err
	}

	edited, _, baseRef, refs, err := parseInput(raw, o.Schema, o.Tree)
	if err != nil {
		return nil, nil, err
	}

	if err := o.checkUnresolvedRefs(ctx, edited, refs); err != nil {
		return nil, nil, err
	}

	if baseRef == "" {
		live, err := dataset.Fetch(ctx, o.Conn, o.Schema)
		if err != nil {
			return nil, nil, err
		}
		return edited, diff.Diff(o.Schema, live, edited), nil
	}

	baseAbs := resolveBasePath(inputPath, baseRef)
	if !fileExists(o.FS, baseAbs) {
		pulled, err := o.pullArchiveObject(ctx, baseAbs)
		if err != nil {
			return nil, nil, err
		}
		if !pulled {
			return nil, nil, errs.Newf(errs.KindMissingBase, "referenced base snapshot not found: %s", baseAbs)
		}
		if o.Log != nil {
			o.Log.Infof("pulled base snapshot %s from archive", filepath.Base(baseAbs))
		}
	}

	baseRaw, err := readFile(o.FS, baseAbs)
	if err != nil {
		return nil, nil, err
	}
	base, _, _, err := dataset.UnmarshalFlatDocument(baseRaw)
	if err != nil {
		return nil, nil, err
	}

	return edited, diff.Diff(o.Schema, base, edited), nil
}

// rewriteBaseAfterSync writes the just-synced edited dataset back out as
// the new base snapshot, at the path the input file referenced — or, if
// the input had no base reference (two-way sync with no prior base), this
// is a no-op, since there is no established base path to rewrite.
func (o *Orchestrator) rewriteBaseAfterSync(inputPath string, edited *dataset.FlatDataset) error {
	raw, err := readFile(o.FS, inputPath)
	if err != nil {
		return err
	}
	_, schemaRef, baseRef, _, err := parseInput(raw, o.Schema, o.Tree)
	if err != nil || baseRef == "" {
		return nil
	}

	baseAbs := resolveBasePath(inputPath, baseRef)
	doc, err := edited.MarshalDocument(schemaRef, "")
	if err != nil {
		return errs.Wrap(errs.KindParseError, "marshal updated base snapshot", err)
	}
	return writeFileAtomic(o.FS, baseAbs, doc)
}

func countKind(changes diff.ChangeSet, kind diff.Kind) int {
	n := 0
	for _, c := range changes {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
