package main

import (
	"fmt"
	"os"

	"github.com/Protocol-Lattice/promptly/src/cli"
)

// Shortcut for "promptly mcp".
func main() {
	root := cli.NewRootCommand()
	root.SetArgs(append([]string{"mcp"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
