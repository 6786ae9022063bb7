// Command schemaui renders stored component schemas as HTML or text, fills
// forms interactively, serves a preview server and manages the schema store.
package main

import (
	"fmt"
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(&app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
