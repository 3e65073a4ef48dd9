// Package main provides the entry point for the garmin-mcp server and CLI.
package main

import (
	"github.com/colthorp/garmin-mcp-go/internal/cli"
)

func main() {
	cli.Execute()
}
