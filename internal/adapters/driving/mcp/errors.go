// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// resume warehouse. It lets AI assistants search candidates and read their
// structured records.
package mcp

import "errors"

// ErrMissingCandidateService is returned when the candidate service is not provided.
var ErrMissingCandidateService = errors.New("mcp: candidate service is required")
