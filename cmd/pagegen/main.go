// Package main provides the pagegen command.
package main

import (
	"os"

	"github.com/leapstack-labs/pagegen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
