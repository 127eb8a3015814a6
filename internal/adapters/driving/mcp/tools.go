package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// SearchInput is the input schema for the search_candidates tool.
type SearchInput struct {
	Query           string `json:"query,omitempty" jsonschema:"full-text query; supports AND, OR, NOT, \"phrase\" and prefix*"`
	Limit           int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Geography       string `json:"geography,omitempty" jsonschema:"only candidates with this primary geography"`
	Sector          string `json:"sector,omitempty" jsonschema:"only candidates with this primary sector"`
	Approach        string `json:"approach,omitempty" jsonschema:"only candidates with this investment approach"`
	Skill           string `json:"skill,omitempty" jsonschema:"only candidates with this skill"`
	Company         string `json:"company,omitempty" jsonschema:"only candidates who worked at this company"`
	School          string `json:"school,omitempty" jsonschema:"only candidates who studied at this school"`
	Degree          string `json:"degree,omitempty" jsonschema:"only candidates holding this degree"`
	MinQualityScore int    `json:"min_quality_score,omitempty" jsonschema:"minimum data quality score (0-100)"`
}

// SearchOutput is the output schema for the search_candidates tool.
type SearchOutput struct {
	Results []CandidateOutput `json:"results"`
	Count   int               `json:"count"`
}

// CandidateOutput represents a single search result.
type CandidateOutput struct {
	CandidateID    int64    `json:"candidate_id"`
	Name           string   `json:"name"`
	CurrentTitle   string   `json:"current_title"`
	CurrentCompany string   `json:"current_company"`
	Years          int      `json:"years_experience"`
	Sector         string   `json:"primary_sector,omitempty"`
	Geography      string   `json:"primary_geography,omitempty"`
	HighestDegree  string   `json:"highest_degree,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	QualityScore   int      `json:"quality_score"`
	Grade          string   `json:"grade,omitempty"`
	Score          float64  `json:"score"`
	MatchedFields  []string `json:"matched_fields,omitempty"`
	Summary        string   `json:"summary,omitempty"`
}

// GetCandidateInput is the input schema for the get_candidate tool.
type GetCandidateInput struct {
	CandidateID int64 `json:"candidate_id" jsonschema:"the candidate id returned by search_candidates"`
}

// CandidateDetailOutput is the output schema for the get_candidate tool.
type CandidateDetailOutput struct {
	Candidate   CandidateOutput    `json:"candidate"`
	Experiences []ExperienceOutput `json:"experiences"`
	Education   []EducationOutput  `json:"education"`
	Skills      []string           `json:"skills"`
	Notable     []string           `json:"notable_experience,omitempty"`
	Issues      []domain.Issue     `json:"issues,omitempty"`
}

// ExperienceOutput is one role, most recent first.
type ExperienceOutput struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Sectors      []string `json:"sectors,omitempty"`
	Approach     string   `json:"approach,omitempty"`
	SharpeRatio  *float64 `json:"sharpe_ratio,omitempty"`
	Alpha        string   `json:"alpha,omitempty"`
	BulletPoints []string `json:"bullet_points,omitempty"`
}

// EducationOutput is one degree.
type EducationOutput struct {
	Degree string `json:"degree"`
	Major  string `json:"major,omitempty"`
	School string `json:"school"`
	Honors string `json:"honors,omitempty"`
}

// FilterValuesInput is the input schema for the filter_values tool.
type FilterValuesInput struct {
	Field string `json:"field" jsonschema:"one of geography, sector, approach, skill, company, school, degree"`
}

// FilterValuesOutput is the output schema for the filter_values tool.
type FilterValuesOutput struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_candidates",
		Description: "Search candidates by free text and filters, ranked by relevance",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_candidate",
		Description: "Get a candidate with experience, education, skills and data quality",
	}, s.handleGetCandidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filter_values",
		Description: "List the known values of a filter field",
	}, s.handleFilterValues)
}

// handleSearch handles the search_candidates tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.SearchOptions{
		Limit: limit,
		Filters: domain.SearchFilters{
			Geography:       input.Geography,
			Sector:          input.Sector,
			Approach:        input.Approach,
			Skill:           input.Skill,
			Company:         input.Company,
			School:          input.School,
			Degree:          input.Degree,
			MinQualityScore: input.MinQualityScore,
		},
	}
	results, err := s.ports.Candidates.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]CandidateOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		c := results[i].Candidate
		output.Results[i] = CandidateOutput{
			CandidateID:    c.ID,
			Name:           c.Name,
			CurrentTitle:   c.CurrentTitle,
			CurrentCompany: c.CurrentCompany,
			Years:          c.YearsExperience,
			Sector:         c.PrimarySector,
			Geography:      c.PrimaryGeography,
			HighestDegree:  results[i].HighestDegree,
			Skills:         results[i].Skills,
			QualityScore:   results[i].QualityScore,
			Grade:          results[i].Grade.String(),
			Score:          results[i].Score,
			MatchedFields:  results[i].MatchedFields,
			Summary:        c.SummaryBlurb,
		}
	}

	return nil, output, nil
}

// handleGetCandidate handles the get_candidate tool invocation.
func (s *Server) handleGetCandidate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCandidateInput,
) (*mcp.CallToolResult, CandidateDetailOutput, error) {
	detail, err := s.ports.Candidates.Get(ctx, input.CandidateID)
	if err != nil {
		return nil, CandidateDetailOutput{}, fmt.Errorf("getting candidate %d: %w", input.CandidateID, err)
	}
	return nil, detailOutput(detail), nil
}

func detailOutput(d *domain.CandidateDetail) CandidateDetailOutput {
	c := d.Candidate
	out := CandidateDetailOutput{
		Candidate: CandidateOutput{
			CandidateID:    c.ID,
			Name:           c.Name,
			CurrentTitle:   c.CurrentTitle,
			CurrentCompany: c.CurrentCompany,
			Years:          c.YearsExperience,
			Sector:         c.PrimarySector,
			Geography:      c.PrimaryGeography,
			Summary:        c.SummaryBlurb,
		},
		Experiences: make([]ExperienceOutput, len(d.Experiences)),
		Education:   make([]EducationOutput, len(d.Education)),
		Skills:      make([]string, len(d.Skills)),
		Notable:     c.NotableExperience,
	}

	degrees := make([]string, len(d.Education))
	for i, e := range d.Education {
		out.Education[i] = EducationOutput{Degree: e.Degree, Major: e.Major, School: e.School, Honors: e.Honors}
		degrees[i] = e.Degree
	}
	out.Candidate.HighestDegree = domain.HighestDegree(degrees)

	for i, e := range d.Experiences {
		out.Experiences[i] = ExperienceOutput{
			Company:      e.Company,
			Title:        e.Title,
			StartDate:    e.StartDate,
			EndDate:      e.EndDate,
			Sectors:      e.Sectors,
			Approach:     e.Approach,
			SharpeRatio:  e.SharpeRatio,
			Alpha:        e.Alpha,
			BulletPoints: e.BulletPoints,
		}
	}
	for i, sk := range d.Skills {
		out.Skills[i] = sk.Skill
	}
	out.Candidate.Skills = out.Skills

	if q := d.Quality; q != nil {
		out.Candidate.QualityScore = q.QualityScore
		out.Candidate.Grade = q.Grade.String()
		out.Issues = q.Issues.All()
	}
	return out
}

// handleFilterValues handles the filter_values tool invocation.
func (s *Server) handleFilterValues(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilterValuesInput,
) (*mcp.CallToolResult, FilterValuesOutput, error) {
	values, err := s.ports.Candidates.FilterValues(ctx, domain.FilterField(input.Field))
	if err != nil {
		return nil, FilterValuesOutput{}, err
	}
	if values == nil {
		values = []string{}
	}
	return nil, FilterValuesOutput{Field: input.Field, Values: values}, nil
}
