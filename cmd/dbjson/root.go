package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dbjson/internal/archive"
	archiveminio "dbjson/internal/archive/minio"
	"dbjson/internal/db"
	"dbjson/internal/db/postgres"
	"dbjson/internal/logger"
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
	"dbjson/internal/sync"
)

var (
	flagProfile      string
	flagProfilePath  string
	flagDSN          string
	flagNamespace    string
	flagLogLevel     string
	flagLogFormat    string
	flagArchiveBkt   string
	flagArchiveEnd   string
	flagArchiveKeyID string
	flagArchiveKey   string
)

var rootCmd = &cobra.Command{
	Use:   "dbjson",
	Short: "Edit a relational database as one hierarchical JSON document",
	Long: `dbjson dumps a PostgreSQL database into a single JSON document shaped by
its foreign-key ownership structure, lets you edit that document with any
text editor or LLM, and syncs your edits back as a minimal, FK-ordered set
of INSERT/UPDATE/DELETE statements.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "named connection profile from the profile file")
	rootCmd.PersistentFlags().StringVar(&flagProfilePath, "profile-file", "", "path to the YAML profile file (default $HOME/.dbjson.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "PostgreSQL connection string (overrides --profile)")
	rootCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "public", "database schema/namespace to introspect")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format: console, json")
	rootCmd.PersistentFlags().StringVar(&flagArchiveBkt, "archive-bucket", "", "if set, push/pull the dump and base snapshot to this bucket")
	rootCmd.PersistentFlags().StringVar(&flagArchiveEnd, "archive-endpoint", "", "archive object-storage endpoint (host:port)")
	rootCmd.PersistentFlags().StringVar(&flagArchiveKeyID, "archive-access-key", "", "archive access key")
	rootCmd.PersistentFlags().StringVar(&flagArchiveKey, "archive-secret-key", "", "archive secret key")

	rootCmd.AddCommand(dumpCmd, previewCmd, syncCmd, resetCmd, serveCmd)
}

// Execute runs the CLI; called from main.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// resolveDSN applies --dsn, falling back to the named --profile from the
// profile file.
func resolveDSN() (dsn, namespace string, err error) {
	if flagDSN != "" {
		return flagDSN, flagNamespace, nil
	}
	if flagProfile == "" {
		return "", "", fmt.Errorf("one of --dsn or --profile is required")
	}

	path := flagProfilePath
	if path == "" {
		path = defaultProfilePath()
	}
	pf, err := loadProfileFile(path)
	if err != nil {
		return "", "", err
	}
	p, ok := pf.lookup(flagProfile)
	if !ok {
		return "", "", fmt.Errorf("no profile named %q in %s", flagProfile, path)
	}
	ns := flagNamespace
	if p.Namespace != "" && flagNamespace == "public" {
		ns = p.Namespace
	}
	return p.DSN, ns, nil
}

// buildOrchestrator connects to the database, extracts its schema, builds
// the ownership tree, and wires an optional archive backend — the shared
// setup every subcommand, serve included, runs once at start.
func buildOrchestrator(ctx context.Context) (*sync.Orchestrator, error) {
	dsn, namespace, err := resolveDSN()
	if err != nil {
		return nil, err
	}

	log := logger.New(&logger.Config{Level: flagLogLevel, Format: flagLogFormat, Output: os.Stdout})

	conn, err := postgres.New(ctx, db.DefaultConfig(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s, err := schema.Extract(ctx, conn, namespace)
	if err != nil {
		return nil, fmt.Errorf("extract schema: %w", err)
	}

	tree, err := ownership.Build(s)
	if err != nil {
		return nil, fmt.Errorf("build ownership tree: %w", err)
	}

	o := sync.New(conn, s, tree, log, nil)

	if flagArchiveBkt != "" {
		store, err := archiveminio.New(ctx, &archive.Config{
			Provider:  archive.ProviderMinIO,
			Endpoint:  flagArchiveEnd,
			AccessKey: flagArchiveKeyID,
			SecretKey: flagArchiveKey,
			Bucket:    flagArchiveBkt,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to archive backend: %w", err)
		}
		o.Archive = store
		o.ArchiveBucket = flagArchiveBkt
	}

	return o, nil
}
