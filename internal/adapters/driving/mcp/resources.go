package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for warehouse resources.
	uriScheme = "resume://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing candidates.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "candidates",
		Name:        "candidates",
		Description: "List of all candidates in the warehouse",
		MIMEType:    "application/json",
	}, s.handleCandidatesResource)

	// Template for a candidate record.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "candidates/{candidateId}",
		Name:        "candidate",
		Description: "Structured record of one candidate",
		MIMEType:    "application/json",
	}, s.handleCandidateResource)

	// Template for filter vocabularies.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "filters/{field}",
		Name:        "filter-values",
		Description: "Known values of a filter field",
		MIMEType:    "application/json",
	}, s.handleFilterResource)
}

// handleCandidatesResource returns a list of all candidates.
func (s *Server) handleCandidatesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	candidates, err := s.ports.Candidates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	// Build simplified candidate list.
	type candidateInfo struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		CurrentTitle   string `json:"current_title"`
		CurrentCompany string `json:"current_company"`
		URI            string `json:"uri"`
	}

	infos := make([]candidateInfo, len(candidates))
	for i := range candidates {
		infos[i] = candidateInfo{
			ID:             candidates[i].ID,
			Name:           candidates[i].Name,
			CurrentTitle:   candidates[i].CurrentTitle,
			CurrentCompany: candidates[i].CurrentCompany,
			URI:            candidateURI(candidates[i].ID),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleCandidateResource returns the full record of one candidate.
func (s *Server) handleCandidateResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract candidateId from URI: resume://candidates/{candidateId}
	id := extractCandidateID(req.Params.URI)
	if id <= 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	detail, err := s.ports.Candidates.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting candidate: %w", err)
	}

	return jsonResource(req.Params.URI, detail)
}

// handleFilterResource returns the values of one filter field.
func (s *Server) handleFilterResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	field := extractFilterField(req.Params.URI)
	if !field.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	values, err := s.ports.Candidates.FilterValues(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("listing filter values: %w", err)
	}
	if values == nil {
		values = []string{}
	}

	return jsonResource(req.Params.URI, values)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func candidateURI(id int64) string {
	return uriScheme + "candidates/" + strconv.FormatInt(id, 10)
}

// extractCandidateID extracts the candidate ID from a URI like resume://candidates/{candidateId}.
// Returns 0 when the URI does not name a candidate.
func extractCandidateID(uri string) int64 {
	const prefix = uriScheme + "candidates/"

	if !strings.HasPrefix(uri, prefix) {
		return 0
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// extractFilterField extracts the field from a URI like resume://filters/{field}.
func extractFilterField(uri string) domain.FilterField {
	const prefix = uriScheme + "filters/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return domain.FilterField(strings.TrimPrefix(uri, prefix))
}
