// Package mcp provides an MCP (Model Context Protocol) server adapter for fixpath.
// It lets AI assistants diagnose equipment, seed manuals and query repair stores.
package mcp

import "errors"

// ErrMissingRepairService is returned when the repair service is not provided.
var ErrMissingRepairService = errors.New("mcp: repair service is required")

// ErrUnavailable is returned by tools whose backing service is not configured.
var ErrUnavailable = errors.New("mcp: service not configured")
