package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

func sampleDetails() []domain.CandidateDetail {
	sharpe := 1.4
	issues := domain.NewIssueSet()
	issues.Add(domain.Issue{Field: "email", Message: "missing", Severity: domain.SeverityCritical})
	issues.Add(domain.Issue{Field: "phone", Message: "not in canonical format", Severity: domain.SeverityFormatting})

	return []domain.CandidateDetail{
		{
			Candidate: domain.Candidate{
				ID:             1,
				Name:           "Jane Doe",
				CurrentTitle:   "Portfolio Manager",
				CurrentCompany: "Acme Capital",
				TopSkills:      []string{"Python", "DCF"},
			},
			Experiences: []domain.ExperienceRow{
				{Position: 0, Company: "Acme Capital", Title: "Portfolio Manager", SharpeRatio: &sharpe},
				{Position: 1, Company: "Beta Partners", Title: "Analyst"},
			},
			Education: []domain.EducationRow{
				{Degree: "MBA", School: "Wharton"},
				{Degree: "BS", Major: "Economics", School: "MIT"},
			},
			Quality: &domain.QualityScore{QualityScore: 88, Grade: domain.GradeB, TotalIssues: 2, Issues: issues},
		},
		{
			Candidate: domain.Candidate{ID: 2, Name: "John Roe"},
		},
	}
}

func TestExcelExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.xlsx")

	require.NoError(t, NewExcelExporter().Export(path, sampleDetails()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCandidates, SheetExperience, SheetEducation, SheetQuality}, f.GetSheetList())

	rows, err := f.GetRows(SheetCandidates)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Jane Doe", rows[1][1])
	assert.Equal(t, "MBA", rows[1][8])
	assert.Equal(t, "Python, DCF", rows[1][9])
	assert.Equal(t, "88", rows[1][11])
	assert.Equal(t, "B", rows[1][12])
	assert.Equal(t, "John Roe", rows[2][1])

	rows, err = f.GetRows(SheetExperience)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Acme Capital", rows[1][3])
	assert.Equal(t, "1.4", rows[1][9])
	assert.Equal(t, "Beta Partners", rows[2][3])

	rows, err = f.GetRows(SheetEducation)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = f.GetRows(SheetQuality)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "critical", rows[1][2])
	assert.Equal(t, "email", rows[1][3])
}

func TestExcelExporter_AppendsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report")

	require.NoError(t, NewExcelExporter().Export(path, nil))

	f, err := excelize.OpenFile(path + ".xlsx")
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetCandidates)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExcelExporter_EmptyPath(t *testing.T) {
	err := NewExcelExporter().Export("", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
