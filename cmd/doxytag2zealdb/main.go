// Package main is the entry point for the doxytag2zealdb CLI tool.
package main

import (
	"github.com/vedvyas/doxytag2zealdb/internal/cli"
)

func main() {
	cli.Execute()
}
