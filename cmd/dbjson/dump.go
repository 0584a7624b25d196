package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbjson/internal/sync"
)

var (
	dumpOutput      string
	dumpLimit       int
	dumpNestedLimit int
	dumpFlat        bool
	dumpNoBase      bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the database to a single JSON document",
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "dump.json", "output file path")
	dumpCmd.Flags().IntVar(&dumpLimit, "limit", 0, "cap rows per root/table in the user-facing file (0 = unbounded)")
	dumpCmd.Flags().IntVar(&dumpNestedLimit, "nested-limit", 0, "cap rows at every level below the root, nested layout only (0 = unbounded)")
	dumpCmd.Flags().BoolVar(&dumpFlat, "flat", false, "write flat layout instead of the default nested layout")
	dumpCmd.Flags().BoolVar(&dumpNoBase, "no-base", false, "skip writing the base-snapshot companion file")
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Conn.Close()

	opts := sync.DumpOptions{
		OutputPath: dumpOutput,
		Flat:       dumpFlat,
		NoBase:     dumpNoBase,
	}
	if dumpLimit > 0 {
		opts.Limit = &dumpLimit
	}
	if dumpNestedLimit > 0 {
		opts.NestedLimit = &dumpNestedLimit
	}

	if err := o.Dump(ctx, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", dumpOutput)
	return nil
}
