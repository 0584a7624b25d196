package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbjson/internal/diff"
	"dbjson/internal/sync"
)

var previewInput string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the change set an edited document would produce, without applying it",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "input", "i", "dump.json", "edited document to preview")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Conn.Close()

	changes, err := o.Preview(ctx, sync.PreviewOptions{InputPath: previewInput})
	if err != nil {
		return err
	}
	printChangeSet(changes)
	return nil
}

func printChangeSet(changes diff.ChangeSet) {
	if len(changes) == 0 {
		fmt.Println("no changes")
		return
	}
	for _, c := range changes {
		fmt.Printf("%s %s %v\n", c.Kind, c.Table, changePrimaryKey(c))
	}
	var inserts, updates, deletes int
	for _, c := range changes {
		switch c.Kind {
		case diff.Insert:
			inserts++
		case diff.Update:
			updates++
		case diff.Delete:
			deletes++
		}
	}
	fmt.Printf("%d insert(s), %d update(s), %d delete(s)\n", inserts, updates, deletes)
}

func changePrimaryKey(c *diff.Change) map[string]any {
	switch c.Kind {
	case diff.Insert:
		return c.Row
	default:
		return c.PrimaryKey
	}
}
