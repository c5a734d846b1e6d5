// Package main is the entry point for the publishplane CLI.
// The CLI is the terminal tool editors and operators use against the
// publishplane API.
package main

import (
	"os"

	"publishplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
