// ./main.go
package main

import (
	"github.com/browsyhq/browsy-core/cmd"
)

// main is the entry point for the browsy CLI application.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
