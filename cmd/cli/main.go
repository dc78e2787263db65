// Package main is the entry point for the athena-query CLI binary.
package main

import (
	"os"

	cli "athena-query/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
