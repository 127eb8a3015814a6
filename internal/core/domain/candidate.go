package domain

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

// Candidate is the queryable warehouse projection of a SummaryRecord.
type Candidate struct {
	ID                 int64     `json:"id"`
	ParsedID           int64     `json:"parsed_id"`
	Name               string    `json:"name"`
	CurrentTitle       string    `json:"current_title"`
	CurrentCompany     string    `json:"current_company"`
	YearsExperience    int       `json:"years_experience"`
	PrimarySector      string    `json:"primary_sector"`
	InvestmentApproach string    `json:"investment_approach"`
	PrimaryGeography   string    `json:"primary_geography"`
	SummaryBlurb       string    `json:"summary_blurb"`
	TopSkills          []string  `json:"top_skills"`
	NotableExperience  []string  `json:"notable_experience"`
	EducationHighlight string    `json:"education_highlight"`
	Certifications     []string  `json:"certifications"`
	ResumePath         string    `json:"resume_path"`
	CreatedAt          time.Time `json:"created_at"`
}

// ExperienceRow is one normalised experience of a candidate.
// Position is the zero-based index on the resume; position 0 is the current role.
type ExperienceRow struct {
	ID                   int64    `json:"id"`
	CandidateID          int64    `json:"candidate_id"`
	Position             int      `json:"position"`
	Company              string   `json:"company"`
	Title                string   `json:"title"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	Sectors              []string `json:"sectors"`
	Approach             string   `json:"approach"`
	ClientType           string   `json:"client_type"`
	NumCompaniesCovered  *int     `json:"num_companies_covered"`
	NumSectorsCovered    *int     `json:"num_sectors_covered"`
	CoverageValue        string   `json:"coverage_value"`
	RegionsCovered       []string `json:"regions_covered"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	Alpha                string   `json:"alpha"`
	ValuationMethodsUsed []string `json:"valuation_methods_used"`
	QuantToolsUsed       []string `json:"quant_tools_used"`
	BulletPoints         []string `json:"bullet_points"`
}

// EducationRow is one normalised education entry of a candidate.
type EducationRow struct {
	ID          int64  `json:"id"`
	CandidateID int64  `json:"candidate_id"`
	Position    int    `json:"position"`
	Degree      string `json:"degree"`
	Major       string `json:"major"`
	School      string `json:"school"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Honors      string `json:"honors"`
}

// SkillRow is one distinct skill of a candidate.
type SkillRow struct {
	ID          int64  `json:"id"`
	CandidateID int64  `json:"candidate_id"`
	Skill       string `json:"skill"`
}

// QualityScore is the persisted ValidationResult of a candidate.
type QualityScore struct {
	ID           int64        `json:"id"`
	CandidateID  int64        `json:"candidate_id"`
	QualityScore int          `json:"quality_score"`
	Grade        Grade        `json:"grade"`
	TotalIssues  int          `json:"total_issues"`
	Issues       IssueSet     `json:"issues"`
	Completeness Completeness `json:"data_completeness"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ParsedArchive is the verbatim archive row of a ParsedRecord.
type ParsedArchive struct {
	ID            int64     `json:"id"`
	CandidateName string    `json:"candidate_name"`
	ParsedJSON    string    `json:"parsed_json"`
	SourceFile    string    `json:"source_file"`
	ResumePath    string    `json:"resume_path"`
	CreatedAt     time.Time `json:"created_at"`
}

// IngestRecord is the unit of work handed to the warehouse writer.
type IngestRecord struct {
	Parsed     *ParsedRecord
	Summary    *SummaryRecord
	Validation ValidationResult

	// SourceFile is the resume path. It is the identity key of the candidate;
	// when empty the candidate name is used instead.
	SourceFile string
}

// IdentityKey returns the key that identifies the candidate across re-ingestion.
func (r IngestRecord) IdentityKey() string {
	if s := strings.TrimSpace(r.SourceFile); s != "" {
		return "path:" + s
	}
	return "name:" + r.CandidateName()
}

// CandidateName returns the summary name, falling back to the parsed name.
func (r IngestRecord) CandidateName() string {
	if r.Summary != nil {
		if name := Text(r.Summary.Name); name != "" {
			return name
		}
	}
	return r.Parsed.CandidateName()
}

// Named reports whether the parsed record carries a name. Records without
// one are flagged critical by validation and never written, whatever the
// summary says.
func (r IngestRecord) Named() bool {
	return r.Parsed.CandidateName() != ""
}

// ResumePath returns the trimmed source path, or "" for name-keyed records.
func (r IngestRecord) ResumePath() string {
	return strings.TrimSpace(r.SourceFile)
}

// ArchiveSourceFile returns the base name stored in the parsed archive.
func (r IngestRecord) ArchiveSourceFile() string {
	if s := strings.TrimSpace(r.SourceFile); s != "" {
		return filepath.Base(s)
	}
	return r.CandidateName() + ".json"
}

// ProjectCandidate builds the Candidate row for a record pair.
// Title and company fall back to the first listed experience.
func ProjectCandidate(rec IngestRecord) Candidate {
	c := Candidate{
		Name:       rec.CandidateName(),
		ResumePath: strings.TrimSpace(rec.SourceFile),
	}
	summary := rec.Summary
	if summary == nil {
		summary = &SummaryRecord{}
	}

	c.CurrentTitle = Text(summary.CurrentTitle)
	c.CurrentCompany = Text(summary.CurrentCompany)
	if exps := rec.Parsed.ExperienceList(); len(exps) > 0 {
		if c.CurrentTitle == "" {
			c.CurrentTitle = Text(exps[0].Title)
		}
		if c.CurrentCompany == "" {
			c.CurrentCompany = Text(exps[0].Company)
		}
	}

	years, ok := summary.YearsExperience.Get()
	if !ok && rec.Parsed != nil {
		years, _ = rec.Parsed.YearsExperience.Get()
	}
	c.YearsExperience = wholeYears(years)

	c.PrimarySector = summary.PrimarySector()
	if c.PrimarySector == "" && rec.Parsed != nil {
		c.PrimarySector = Text(rec.Parsed.PrimarySector)
	}
	c.PrimaryGeography = Text(summary.PrimaryGeography)
	if c.PrimaryGeography == "" && rec.Parsed != nil {
		c.PrimaryGeography = Text(rec.Parsed.PrimaryGeography)
	}
	c.InvestmentApproach = Text(summary.InvestmentApproach)
	c.SummaryBlurb = Text(summary.SummaryBlurb)
	c.TopSkills = Items(summary.TopSkills)
	c.NotableExperience = Items(summary.NotableExperience)
	c.EducationHighlight = Text(summary.EducationHighlight)
	c.Certifications = CertificationList(rec.Parsed, rec.Summary)
	return c
}

func wholeYears(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(v))
}

// NormaliseExperiences maps the parsed experiences to rows in resume order.
func NormaliseExperiences(parsed *ParsedRecord) []ExperienceRow {
	exps := parsed.ExperienceList()
	rows := make([]ExperienceRow, 0, len(exps))
	for i, exp := range exps {
		row := ExperienceRow{
			Position:             i,
			Company:              Text(exp.Company),
			Title:                Text(exp.Title),
			StartDate:            Text(exp.Start),
			EndDate:              Text(exp.End),
			Sectors:              Items(exp.Sectors),
			Approach:             Text(exp.Approach),
			ClientType:           Text(exp.ClientType),
			CoverageValue:        Text(exp.CoverageValue),
			RegionsCovered:       Items(exp.RegionsCovered),
			Alpha:                Text(exp.Alpha),
			ValuationMethodsUsed: Items(exp.ValuationMethodsUsed),
			QuantToolsUsed:       Items(exp.QuantToolsUsed),
			BulletPoints:         Items(exp.BulletPoints),
		}
		if v, ok := exp.NumCompaniesCovered.Get(); ok {
			row.NumCompaniesCovered = &v
		}
		if v, ok := exp.NumSectorsCovered.Get(); ok {
			row.NumSectorsCovered = &v
		}
		if v, ok := exp.SharpeRatio.Get(); ok {
			row.SharpeRatio = &v
		}
		rows = append(rows, row)
	}
	return rows
}

// NormaliseEducation maps the parsed education entries to rows in resume order.
func NormaliseEducation(parsed *ParsedRecord) []EducationRow {
	edus := parsed.EducationList()
	rows := make([]EducationRow, 0, len(edus))
	for i, edu := range edus {
		rows = append(rows, EducationRow{
			Position:  i,
			Degree:    Text(edu.Degree),
			Major:     Text(edu.Major),
			School:    Text(edu.School),
			StartDate: Text(edu.Start),
			EndDate:   Text(edu.End),
			Honors:    Text(edu.Honors),
		})
	}
	return rows
}

// NormaliseSkills returns the distinct skills of a record. Comparison is
// case-insensitive and the casing of the first occurrence is kept.
func NormaliseSkills(parsed *ParsedRecord) []SkillRow {
	skills := DedupeFold(parsed.SkillList())
	rows := make([]SkillRow, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, SkillRow{Skill: s})
	}
	return rows
}

// DedupeFold removes blank and case-insensitive duplicate entries, keeping
// the first casing seen.
func DedupeFold(values ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range values {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
