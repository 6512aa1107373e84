package main

import (
	"os"

	"github.com/Makepad-fr/itemdesk/internal/cli"
)

func main() {
	// Flags, config and subcommands are all handled by the CLI runner.
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
