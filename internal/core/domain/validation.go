package domain

// Severity classifies a validation issue.
type Severity string

// Issue severities.
const (
	// SeverityCritical marks data without which a candidate is barely usable.
	SeverityCritical Severity = "critical"

	// SeverityFormatting marks values that deviate from canonical formats.
	SeverityFormatting Severity = "formatting"

	// SeverityWarning marks missing optional data and inconsistent metrics.
	SeverityWarning Severity = "warning"
)

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// Grade is the letter grade derived from a quality score.
type Grade string

// Letter grades.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// String returns the string representation.
func (g Grade) String() string {
	return string(g)
}

// ParseGrade returns the grade named by s.
func ParseGrade(s string) (Grade, bool) {
	switch g := Grade(s); g {
	case GradeA, GradeB, GradeC, GradeD, GradeF:
		return g, true
	default:
		return "", false
	}
}

// Issue is a single failed validation check.
type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// IssueSet holds issues partitioned by severity.
type IssueSet struct {
	Critical   []Issue `json:"critical"`
	Formatting []Issue `json:"formatting"`
	Warning    []Issue `json:"warning"`
}

// NewIssueSet returns an IssueSet whose lists encode as [] rather than null.
func NewIssueSet() IssueSet {
	return IssueSet{
		Critical:   []Issue{},
		Formatting: []Issue{},
		Warning:    []Issue{},
	}
}

// Add appends an issue to the list matching its severity.
func (s *IssueSet) Add(issue Issue) {
	switch issue.Severity {
	case SeverityCritical:
		s.Critical = append(s.Critical, issue)
	case SeverityFormatting:
		s.Formatting = append(s.Formatting, issue)
	default:
		issue.Severity = SeverityWarning
		s.Warning = append(s.Warning, issue)
	}
}

// Total returns the number of issues across all severities.
func (s IssueSet) Total() int {
	return len(s.Critical) + len(s.Formatting) + len(s.Warning)
}

// All returns every issue, critical first.
func (s IssueSet) All() []Issue {
	all := make([]Issue, 0, s.Total())
	all = append(all, s.Critical...)
	all = append(all, s.Formatting...)
	all = append(all, s.Warning...)
	return all
}

// Completeness lists the fields that were absent.
type Completeness struct {
	MissingRequired []string `json:"missing_required"`
	MissingOptional []string `json:"missing_optional"`
}

// ValidationResult is the quality assessment of a ParsedRecord/SummaryRecord pair.
type ValidationResult struct {
	QualityScore int          `json:"quality_score"`
	Grade        Grade        `json:"grade"`
	TotalIssues  int          `json:"total_issues"`
	Issues       IssueSet     `json:"issues"`
	Completeness Completeness `json:"data_completeness"`
}
