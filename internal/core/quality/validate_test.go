package quality

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// completeRecords returns a pair with every scored field present and no issues.
func completeRecords() (*domain.ParsedRecord, *domain.SummaryRecord) {
	parsed := &domain.ParsedRecord{
		Name: domain.Some("Jane Doe"),
		Experiences: domain.Some(domain.List[domain.Experience]{{
			Company:     domain.Some("Goldman Sachs"),
			Title:       domain.Some("Analyst"),
			Start:       domain.Some("Jan-01-2019"),
			End:         domain.Some("Present"),
			Sectors:     domain.Some(domain.StringList{"TMT"}),
			SharpeRatio: domain.Some(1.5),
			Alpha:       domain.Some("3%"),
		}}),
		Education: domain.Some(domain.List[domain.Education]{{
			Degree: domain.Some("B.S."),
			School: domain.Some("MIT"),
			Start:  domain.Some("Sep-01-2011"),
			End:    domain.Some("May-30-2015"),
			Honors: domain.Some("Summa Cum Laude"),
		}}),
		Skills:         domain.Some(domain.StringList{"Python", "DCF"}),
		Certifications: domain.Some(domain.StringList{"CFA"}),
	}
	summary := &domain.SummaryRecord{
		Name:               domain.Some("Jane Doe"),
		CurrentTitle:       domain.Some("Analyst"),
		CurrentCompany:     domain.Some("Goldman Sachs"),
		YearsExperience:    domain.Some(6.0),
		SectorFocus:        domain.Some(domain.StringList{"TMT"}),
		InvestmentApproach: domain.Some("Fundamental"),
		PrimaryGeography:   domain.Some("US"),
		SummaryBlurb:       domain.Some("Equity analyst covering TMT."),
		Certifications:     domain.Some(domain.StringList{"CFA"}),
	}
	return parsed, summary
}

func TestValidate_Complete(t *testing.T) {
	parsed, summary := completeRecords()
	result := Validate(parsed, summary)

	assert.Equal(t, 100, result.QualityScore)
	assert.Equal(t, domain.GradeA, result.Grade)
	assert.Equal(t, 0, result.TotalIssues)
	assert.Empty(t, result.Completeness.MissingRequired)
	assert.Empty(t, result.Completeness.MissingOptional)
}

func TestValidate_OneRequiredMissing(t *testing.T) {
	parsed, summary := completeRecords()
	summary.PrimaryGeography = domain.Opt[string]{}

	result := Validate(parsed, summary)

	assert.Equal(t, 92, result.QualityScore)
	assert.Equal(t, domain.GradeA, result.Grade)
	assert.Equal(t, []string{"primary_geography"}, result.Completeness.MissingRequired)
}

func TestValidate_SharpeWithoutAlpha(t *testing.T) {
	parsed, summary := completeRecords()
	exps := parsed.ExperienceList()
	exps[0].Alpha = domain.Opt[string]{}
	parsed.Experiences = domain.Some(domain.List[domain.Experience](exps))

	result := Validate(parsed, summary)

	require.Equal(t, 1, result.TotalIssues)
	require.Len(t, result.Issues.Warning, 1)
	assert.Contains(t, result.Issues.Warning[0].Message, "sharpe_ratio present without alpha")
	assert.Equal(t, domain.SeverityWarning, result.Issues.Warning[0].Severity)
}

func TestValidate_AlphaWithoutSharpe(t *testing.T) {
	parsed, summary := completeRecords()
	exps := parsed.ExperienceList()
	exps[0].SharpeRatio = domain.Opt[float64]{}
	parsed.Experiences = domain.Some(domain.List[domain.Experience](exps))

	result := Validate(parsed, summary)

	require.Len(t, result.Issues.Warning, 1)
	assert.Contains(t, result.Issues.Warning[0].Message, "alpha present without sharpe_ratio")
}

func TestValidate_NonCanonicalDegree(t *testing.T) {
	parsed, summary := completeRecords()
	edus := parsed.EducationList()
	edus[0].Degree = domain.Some("bs")
	parsed.Education = domain.Some(domain.List[domain.Education](edus))

	result := Validate(parsed, summary)

	require.Len(t, result.Issues.Formatting, 1)
	issue := result.Issues.Formatting[0]
	assert.Equal(t, "education[0].degree", issue.Field)
	assert.Contains(t, issue.Message, `"B.S."`)
	assert.Equal(t, "B.S.", NormalizeDegree("bs"))
}

func TestValidate_EmptyName(t *testing.T) {
	parsed, summary := completeRecords()
	parsed.Name = domain.Some("   ")

	result := Validate(parsed, summary)

	require.Len(t, result.Issues.Critical, 1)
	assert.Equal(t, "Missing candidate name", result.Issues.Critical[0].Message)
	assert.Contains(t, result.Completeness.MissingRequired, "name")
}

func TestValidate_WrongTypedListEntriesAreNotCritical(t *testing.T) {
	parsed, err := domain.DecodeParsedRecord([]byte(`{
		"name": "Jane Doe",
		"skills": ["Python", "SQL", 3],
		"experiences": [{"company": "Goldman Sachs", "title": "Analyst"}, "Intern at Foo"]
	}`))
	require.NoError(t, err)

	result := Validate(parsed, nil)

	assert.Empty(t, result.Issues.Critical)
}

func TestValidate_NilRecords(t *testing.T) {
	result := Validate(nil, nil)

	assert.Equal(t, 0, result.QualityScore)
	assert.Equal(t, domain.GradeF, result.Grade)
	assert.Len(t, result.Completeness.MissingRequired, 10)
	assert.Len(t, result.Completeness.MissingOptional, 5)
	assert.Len(t, result.Issues.Critical, 3)
	assert.Equal(t, result.Issues.Total(), result.TotalIssues)
}

func TestValidate_FormattingBattery(t *testing.T) {
	parsed, summary := completeRecords()
	parsed.Name = domain.Some("JANE DOE")
	summary.Name = domain.Some("jane doe")
	summary.YearsExperience = domain.Opt[float64]{Malformed: true}
	exps := parsed.ExperienceList()
	exps[0].Start = domain.Some("2019-01-01")
	exps[0].End = domain.Some("01/2021")
	parsed.Experiences = domain.Some(domain.List[domain.Experience](exps))

	result := Validate(parsed, summary)

	fields := make([]string, 0, len(result.Issues.Formatting))
	for _, issue := range result.Issues.Formatting {
		fields = append(fields, issue.Field)
	}
	assert.ElementsMatch(t, []string{
		"name",
		"summary.name",
		"summary.years_experience",
		"experiences[0].start",
		"experiences[0].end",
	}, fields)
	assert.Contains(t, result.Completeness.MissingRequired, "years_experience")
}

func TestValidate_MissingOptionalWarnings(t *testing.T) {
	parsed, summary := completeRecords()
	parsed.Certifications = domain.Opt[domain.StringList]{}
	summary.Certifications = domain.Opt[domain.StringList]{}
	edus := parsed.EducationList()
	edus[0].Honors = domain.Opt[string]{}
	parsed.Education = domain.Some(domain.List[domain.Education](edus))

	result := Validate(parsed, summary)

	require.Len(t, result.Issues.Warning, 2)
	assert.Equal(t, "certifications", result.Issues.Warning[0].Field)
	assert.Equal(t, "education.honors", result.Issues.Warning[1].Field)
	assert.Equal(t, 92, result.QualityScore)
}

func TestValidate_ZeroYearsIsPresent(t *testing.T) {
	parsed, summary := completeRecords()
	summary.YearsExperience = domain.Some(0.0)
	result := Validate(parsed, summary)
	assert.NotContains(t, result.Completeness.MissingRequired, "years_experience")
}

func TestValidate_Deterministic(t *testing.T) {
	parsed, summary := completeRecords()
	parsed.Name = domain.Some("jane")
	first := Validate(parsed, summary)
	second := Validate(parsed, summary)
	assert.Equal(t, first, second)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		req, opt float64
		want     int
	}{
		{"all present", 10, 5, 100},
		{"nothing", 0, 0, 0},
		{"required only", 10, 0, 80},
		{"optional only", 0, 5, 20},
		{"half rounding up", 7, 3, 68},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.req, tt.opt, 10, 5))
		})
	}
	assert.Equal(t, 0, Score(1, 1, 0, 0))
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Grade
	}{
		{100, domain.GradeA},
		{90, domain.GradeA},
		{89, domain.GradeB},
		{75, domain.GradeB},
		{74, domain.GradeC},
		{60, domain.GradeC},
		{59, domain.GradeD},
		{40, domain.GradeD},
		{39, domain.GradeF},
		{0, domain.GradeF},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, GradeFor(tt.score))
		})
	}
}

func TestFieldLists(t *testing.T) {
	assert.Len(t, RequiredFields(), 10)
	assert.Len(t, OptionalFields(), 5)
}
