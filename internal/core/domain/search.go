package domain

import (
	"strings"
)

// SearchIndexEntry is the full-text index document of one candidate.
type SearchIndexEntry struct {
	CandidateID    int64
	Name           string
	CurrentTitle   string
	CurrentCompany string
	Skills         string
	ExperienceText string
	EducationText  string
	AllCompanies   string
	Certifications string
}

// BuildSearchEntry derives the index document from a candidate's relational state.
// The result depends only on its arguments.
func BuildSearchEntry(c Candidate, exps []ExperienceRow, edus []EducationRow, skills []SkillRow) SearchIndexEntry {
	skillNames := make([]string, 0, len(skills))
	for _, s := range skills {
		skillNames = append(skillNames, s.Skill)
	}

	var companies, expParts []string
	for _, e := range exps {
		if e.Company != "" {
			companies = append(companies, e.Company)
		}
		expParts = append(expParts, joinNonEmpty(" ", e.Company, e.Title))
		expParts = append(expParts, e.BulletPoints...)
	}

	eduParts := make([]string, 0, len(edus))
	for _, e := range edus {
		eduParts = append(eduParts, joinNonEmpty(" ", e.Degree, e.Major, e.School))
	}

	return SearchIndexEntry{
		CandidateID:    c.ID,
		Name:           c.Name,
		CurrentTitle:   c.CurrentTitle,
		CurrentCompany: c.CurrentCompany,
		Skills:         strings.Join(DedupeFold(skillNames, c.TopSkills), " "),
		ExperienceText: joinNonEmpty(" ", expParts...),
		EducationText:  joinNonEmpty(" ", eduParts...),
		AllCompanies:   strings.Join(companies, " "),
		Certifications: strings.Join(c.Certifications, " "),
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// FilterField names a controlled vocabulary in the filter cache.
type FilterField string

// Filterable fields.
const (
	FilterGeography FilterField = "geography"
	FilterSector    FilterField = "sector"
	FilterApproach  FilterField = "approach"
	FilterSkill     FilterField = "skill"
	FilterCompany   FilterField = "company"
	FilterSchool    FilterField = "school"
	FilterDegree    FilterField = "degree"
)

// AllFilterFields returns every filterable field.
func AllFilterFields() []FilterField {
	return []FilterField{
		FilterGeography,
		FilterSector,
		FilterApproach,
		FilterSkill,
		FilterCompany,
		FilterSchool,
		FilterDegree,
	}
}

// IsValid returns true if the field is recognised.
func (f FilterField) IsValid() bool {
	for _, known := range AllFilterFields() {
		if f == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (f FilterField) String() string {
	return string(f)
}

// FilterValue is one (field, value) pair of the filter cache.
type FilterValue struct {
	Field FilterField `json:"field_name"`
	Value string      `json:"field_value"`
}

// CollectFilterValues returns the distinct filter pairs derivable from a candidate.
// Blank values are skipped.
func CollectFilterValues(c Candidate, exps []ExperienceRow, edus []EducationRow, skills []SkillRow) []FilterValue {
	var out []FilterValue
	seen := make(map[FilterValue]struct{})
	add := func(field FilterField, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fv := FilterValue{Field: field, Value: value}
		if _, ok := seen[fv]; ok {
			return
		}
		seen[fv] = struct{}{}
		out = append(out, fv)
	}

	add(FilterGeography, c.PrimaryGeography)
	add(FilterSector, c.PrimarySector)
	add(FilterApproach, c.InvestmentApproach)
	for _, s := range skills {
		add(FilterSkill, s.Skill)
	}
	for _, s := range c.TopSkills {
		add(FilterSkill, s)
	}
	for _, e := range exps {
		add(FilterCompany, e.Company)
	}
	for _, e := range edus {
		add(FilterSchool, e.School)
		add(FilterDegree, e.Degree)
	}
	return out
}

// SearchFilters narrows a search. Empty fields do not filter.
type SearchFilters struct {
	Geography       string
	Sector          string
	Approach        string
	Skill           string
	Company         string
	School          string
	Degree          string
	MinQualityScore int
}

// IsEmpty returns true if no filter is set.
func (f SearchFilters) IsEmpty() bool {
	return f == SearchFilters{}
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero means no limit.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// Filters narrows the candidate set.
	Filters SearchFilters
}

// SearchResult represents a single ranked candidate.
type SearchResult struct {
	Candidate Candidate `json:"candidate"`

	// Score is the bm25 rank. Lower is more relevant; zero for unranked listings.
	Score float64 `json:"score"`

	Skills        []string `json:"skills"`
	Companies     []string `json:"companies"`
	Schools       []string `json:"schools"`
	Degrees       []string `json:"degrees"`
	HighestDegree string   `json:"highest_degree"`
	QualityScore  int      `json:"quality_score"`
	Grade         Grade    `json:"grade"`

	// MatchedFields lists the indexed fields that contain a query term.
	MatchedFields []string `json:"matched_fields,omitempty"`
}

// CandidateDetail is a candidate with all of its child rows.
type CandidateDetail struct {
	Candidate   Candidate       `json:"candidate"`
	Experiences []ExperienceRow `json:"experiences"`
	Education   []EducationRow  `json:"education"`
	Skills      []SkillRow      `json:"skills"`
	Quality     *QualityScore   `json:"quality,omitempty"`
}

// CurrentExperience returns the first listed experience, if any.
func (d CandidateDetail) CurrentExperience() (ExperienceRow, bool) {
	if len(d.Experiences) == 0 {
		return ExperienceRow{}, false
	}
	return d.Experiences[0], true
}

// Suggestions are search terms offered for autocompletion.
type Suggestions []string

// WarehouseStats summarises the warehouse contents.
type WarehouseStats struct {
	Candidates        int           `json:"candidates"`
	Experiences       int           `json:"experiences"`
	Education         int           `json:"education"`
	Skills            int           `json:"skills"`
	FilterValues      int           `json:"filter_values"`
	AverageScore      float64       `json:"average_score"`
	GradeDistribution map[Grade]int `json:"grade_distribution"`
	CriticalIssues    int           `json:"critical_issues"`
	TotalIssues       int           `json:"total_issues"`
}

// DegreeRank orders degrees for picking a candidate's highest degree.
// Doctorates rank 4, professional degrees 3, other masters 2, bachelors 1.
func DegreeRank(degree string) int {
	key := strings.ToUpper(strings.NewReplacer(".", "", " ", "").Replace(degree))
	switch {
	case key == "":
		return 0
	case key == "PHD" || key == "DPHIL" || key == "EDD":
		return 4
	case key == "MBA" || key == "JD" || key == "MD":
		return 3
	case strings.HasPrefix(key, "M"):
		return 2
	case strings.HasPrefix(key, "B"):
		return 1
	default:
		return 0
	}
}

// HighestDegree returns the highest ranked degree, or "" when none rank.
// Ties keep the earliest entry.
func HighestDegree(degrees []string) string {
	best, bestRank := "", 0
	for _, d := range degrees {
		if r := DegreeRank(d); r > bestRank {
			best, bestRank = strings.TrimSpace(d), r
		}
	}
	return best
}
