package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbjson/internal/sync"
)

var (
	resetInput string
	resetYes   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Diff a document against the live database and apply the result, ignoring any base snapshot",
	Long: `reset always performs a two-way diff against the live database, even if the
document references a base snapshot — rows present in the database but
absent from the document are deleted. Use this to discard a stale or
corrupted base snapshot, or to force the database to match the document
exactly.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().StringVarP(&resetInput, "input", "i", "dump.json", "document to reset the database to")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "apply without confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Conn.Close()

	if !confirm(resetYes, "reset is destructive: rows missing from the document will be deleted. continue?") {
		fmt.Println("aborted")
		return nil
	}

	changes, err := o.Reset(ctx, sync.ResetOptions{InputPath: resetInput})
	if err != nil {
		return err
	}
	printChangeSet(changes)
	return nil
}
