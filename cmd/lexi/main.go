// Package main provides the lexi command-line tool.
package main

import (
	"os"

	"github.com/jengamon/lexi/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
