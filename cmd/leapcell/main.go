// Package main is the leapcell command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapcell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
