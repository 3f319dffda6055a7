// ABOUTME: Entry point for the hippolingua CLI
// ABOUTME: Upload, metadata, transcription, translation and preview tooling
package main

import (
	"fmt"
	"os"

	"github.com/hippolingua/hippolingua/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
