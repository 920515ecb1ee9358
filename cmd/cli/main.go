// Package main is the entry point for the aws-cost CLI.
package main

import (
	"os"

	"aws-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
