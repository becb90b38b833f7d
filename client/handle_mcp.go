package client

import (
	"fmt"

	"github.com/codetrek/needle/server"
)

// runMCP serves the MCP server on stdin/stdout until the client disconnects.
// Logs go to the log file, never to stdout.
func runMCP() error {
	s, err := server.New()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return s.ServeStdio()
}
