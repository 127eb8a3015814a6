package mcp

import (
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Candidates provides candidate search and lookup.
	Candidates driving.CandidateService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Candidates == nil {
		return ErrMissingCandidateService
	}
	return nil
}
