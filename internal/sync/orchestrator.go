// Package sync implements the three entry points — Dump, Preview/Sync,
// Reset — that drive the relational↔hierarchical bridge end to end.
package sync

import (
	"github.com/spf13/afero"

	"dbjson/internal/archive"
	"dbjson/internal/db"
	"dbjson/internal/logger"
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
)

// Orchestrator drives Dump/Preview/Sync/Reset against one database
// connection and one filesystem. It holds no state across calls beyond
// what's passed in at construction — every operation rereads the schema's
// tree and rereads/rewrites files fresh.
type Orchestrator struct {
	Conn   db.DB
	FS     afero.Fs
	Schema *schema.Schema
	Tree   *ownership.Tree
	Log    *logger.Logger

	// Archive, if non-nil, mirrors the dump, JSON-schema and base-snapshot
	// files to a shared bucket after Dump (Sync and Reset push nothing), and
	// is consulted by Preview/Sync to pull a base snapshot a teammate
	// produced on another machine. Optional — nil means filesystem-only.
	Archive       archive.Store
	ArchiveBucket string
}

// New constructs an Orchestrator. fs may be nil, in which case the real
// filesystem (afero.NewOsFs()) is used; tests pass afero.NewMemMapFs().
func New(conn db.DB, s *schema.Schema, tree *ownership.Tree, log *logger.Logger, fs afero.Fs) *Orchestrator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Orchestrator{Conn: conn, FS: fs, Schema: s, Tree: tree, Log: log}
}
