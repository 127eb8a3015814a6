package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParsedRecord(t *testing.T) {
	payload := `{
		"name": "Jane Doe",
		"experiences": [
			{"company": "Goldman Sachs", "title": "Analyst", "sharpe_ratio": 1.5, "alpha": null, "sectors": "TMT"}
		],
		"education": "not a list",
		"skills": ["Python", "DCF"],
		"years_experience": "seven"
	}`

	rec, err := DecodeParsedRecord([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", rec.CandidateName())
	require.Len(t, rec.ExperienceList(), 1)
	exp := rec.ExperienceList()[0]
	assert.Equal(t, Some(1.5), exp.SharpeRatio)
	assert.False(t, exp.Alpha.Provided())
	assert.Equal(t, []string{"TMT"}, Items(exp.Sectors))

	assert.Empty(t, rec.EducationList())
	assert.True(t, rec.Education.Malformed)
	assert.Equal(t, []string{"Python", "DCF"}, rec.SkillList())
	assert.True(t, rec.YearsExperience.Malformed)
}

func TestDecodeParsedRecord_WrongTypedEntriesKeepSiblings(t *testing.T) {
	payload := `{
		"name": "Jane Doe",
		"skills": ["Python", "SQL", 3],
		"experiences": [{"company": "Goldman Sachs"}, "Intern at Foo"]
	}`

	rec, err := DecodeParsedRecord([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "SQL"}, rec.SkillList())
	require.Len(t, rec.ExperienceList(), 1)
	assert.Equal(t, "Goldman Sachs", Text(rec.ExperienceList()[0].Company))
	assert.False(t, rec.Experiences.Malformed)
}

func TestDecodeParsedRecord_NotAnObject(t *testing.T) {
	_, err := DecodeParsedRecord([]byte(`["a"]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaViolation))

	_, err = DecodeSummaryRecord([]byte(`not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaViolation))
}

func TestParsedRecord_NilSafe(t *testing.T) {
	var p *ParsedRecord
	assert.Empty(t, p.ExperienceList())
	assert.Empty(t, p.EducationList())
	assert.Empty(t, p.SkillList())
	assert.Equal(t, "", p.CandidateName())
}

func TestSummaryRecord_PrimarySector(t *testing.T) {
	s := &SummaryRecord{SectorFocus: Some(StringList{" ", "Healthcare", "TMT"})}
	assert.Equal(t, "Healthcare", s.PrimarySector())

	var empty *SummaryRecord
	assert.Equal(t, "", empty.PrimarySector())
}

func TestCertificationList_FallsBackToParsed(t *testing.T) {
	parsed := &ParsedRecord{Certifications: Some(StringList{"CFA"})}
	assert.Equal(t, []string{"CFA"}, CertificationList(parsed, &SummaryRecord{}))

	summary := &SummaryRecord{Certifications: Some(StringList{"CAIA"})}
	assert.Equal(t, []string{"CAIA"}, CertificationList(parsed, summary))
}
