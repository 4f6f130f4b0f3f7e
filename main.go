// Commons MCP Server - A Model Context Protocol server for Wikimedia Commons.
// Provides contributor statistics, nearby places, campaigns, media listings
// and file history.
package main

import (
	"github.com/olgasafonova/commons-mcp-server/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, buildTime)
	cli.Execute()
}
