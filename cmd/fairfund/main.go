// Package main is the entry point for the fairfund CLI.
package main

import (
	"os"

	"github.com/fairfund/fairfund/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
