package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbjson/internal/sync"
)

var (
	syncInput string
	syncYes   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Apply an edited document's changes back to the database",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncInput, "input", "i", "dump.json", "edited document to sync")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "apply without confirmation")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Conn.Close()

	preview, err := o.Preview(ctx, sync.PreviewOptions{InputPath: syncInput})
	if err != nil {
		return err
	}
	if len(preview) == 0 {
		fmt.Println("no changes")
		return nil
	}
	printChangeSet(preview)

	if !confirm(syncYes, fmt.Sprintf("apply %d change(s) to the database?", len(preview))) {
		fmt.Println("aborted")
		return nil
	}

	changes, err := o.Sync(ctx, sync.PreviewOptions{InputPath: syncInput})
	if err != nil {
		return err
	}
	fmt.Printf("applied %d change(s)\n", len(changes))
	return nil
}
