// Command dbjson drives the relational↔hierarchical bridge from a
// terminal: dump a database to a user-editable JSON document, preview or
// apply the edits back, or reset the document to match the live database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dbjson:", err)
		os.Exit(1)
	}
}
