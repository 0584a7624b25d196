package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"dbjson/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API surface for dump/preview/sync/reset",
	Long: `serve exposes the same four operations the dump/preview/sync/reset
subcommands drive as a REST API, for CI pipelines or other callers without
a terminal. See internal/httpapi for the route list.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Conn.Close()

	srv := httpapi.New(o, o.Log)
	fmt.Printf("listening on %s\n", serveAddr)
	return http.ListenAndServe(serveAddr, srv)
}
