// Package main is the entry point for the csvpack binary.
package main

import (
	"os"

	"csvpack/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
