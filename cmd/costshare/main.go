// Package main is the entry point for the costshare CLI.
package main

import (
	"os"

	"github.com/eshaffer321/costshare/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
