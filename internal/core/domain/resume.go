package domain

import (
	"encoding/json"
	"fmt"
)

// ParsedRecord is the full structured extraction of one resume.
// It is produced once per resume and archived verbatim.
type ParsedRecord struct {
	Name      Opt[string] `json:"name"`
	Email     Opt[string] `json:"email"`
	Phone     Opt[string] `json:"phone"`
	Location  Opt[string] `json:"location"`
	LinkedIn  Opt[string] `json:"linkedin"`
	Objective Opt[string] `json:"objective"`

	// Experiences are in resume order; the first entry is the most recent role.
	Experiences Opt[List[Experience]] `json:"experiences"`
	Education   Opt[List[Education]]  `json:"education"`

	Skills         Opt[StringList] `json:"skills"`
	Certifications Opt[StringList] `json:"certifications"`
	Languages      Opt[StringList] `json:"languages"`

	PrimarySector    Opt[string]  `json:"primary_sector"`
	PrimaryStrategy  Opt[string]  `json:"primary_strategy"`
	PrimaryGeography Opt[string]  `json:"primary_geography"`
	CurrentLevel     Opt[string]  `json:"current_level"`
	YearsExperience  Opt[float64] `json:"years_experience"`
}

// Experience is one role on a resume.
type Experience struct {
	Company Opt[string] `json:"company"`
	Title   Opt[string] `json:"title"`

	// Start and End are free text, canonically MMM-DD-YYYY.
	Start Opt[string] `json:"start"`
	End   Opt[string] `json:"end"`

	Sectors    Opt[StringList] `json:"sectors"`
	Approach   Opt[string]     `json:"approach"`
	ClientType Opt[string]     `json:"client_type"`

	NumCompaniesCovered Opt[int]        `json:"num_companies_covered"`
	NumSectorsCovered   Opt[int]        `json:"num_sectors_covered"`
	CoverageValue       Opt[string]     `json:"coverage_value"`
	RegionsCovered      Opt[StringList] `json:"regions_covered"`

	SharpeRatio Opt[float64] `json:"sharpe_ratio"`
	Alpha       Opt[string]  `json:"alpha"`

	ValuationMethodsUsed Opt[StringList] `json:"valuation_methods_used"`
	QuantToolsUsed       Opt[StringList] `json:"quant_tools_used"`
	BulletPoints         Opt[StringList] `json:"bullet_points"`
}

// Education is one degree on a resume.
type Education struct {
	Degree Opt[string] `json:"degree"`
	Major  Opt[string] `json:"major"`
	School Opt[string] `json:"school"`
	Start  Opt[string] `json:"start"`
	End    Opt[string] `json:"end"`
	Honors Opt[string] `json:"honors"`
}

// SummaryRecord is the executive view derived from a ParsedRecord.
type SummaryRecord struct {
	Name               Opt[string]     `json:"name"`
	CurrentTitle       Opt[string]     `json:"current_title"`
	CurrentCompany     Opt[string]     `json:"current_company"`
	YearsExperience    Opt[float64]    `json:"years_experience"`
	SectorFocus        Opt[StringList] `json:"sector_focus"`
	InvestmentApproach Opt[string]     `json:"investment_approach"`
	PrimaryGeography   Opt[string]     `json:"primary_geography"`
	SummaryBlurb       Opt[string]     `json:"summary_blurb"`
	NotableExperience  Opt[StringList] `json:"notable_experience"`
	TopSkills          Opt[StringList] `json:"top_skills"`
	EducationHighlight Opt[string]     `json:"education_highlight"`
	Certifications     Opt[StringList] `json:"certifications"`
}

// ExperienceList returns the experiences, or nil when absent.
func (p *ParsedRecord) ExperienceList() []Experience {
	if p == nil {
		return nil
	}
	return p.Experiences.OrZero()
}

// EducationList returns the education entries, or nil when absent.
func (p *ParsedRecord) EducationList() []Education {
	if p == nil {
		return nil
	}
	return p.Education.OrZero()
}

// SkillList returns the non-blank skills in resume order.
func (p *ParsedRecord) SkillList() []string {
	if p == nil {
		return nil
	}
	return Items(p.Skills)
}

// CandidateName returns the trimmed resume name.
func (p *ParsedRecord) CandidateName() string {
	if p == nil {
		return ""
	}
	return Text(p.Name)
}

// PrimarySector returns the first non-blank entry of the sector focus.
func (s *SummaryRecord) PrimarySector() string {
	if s == nil {
		return ""
	}
	if sectors := Items(s.SectorFocus); len(sectors) > 0 {
		return sectors[0]
	}
	return ""
}

// CertificationList returns the summary certifications, falling back to the
// certifications on the parsed record.
func CertificationList(parsed *ParsedRecord, summary *SummaryRecord) []string {
	if summary != nil {
		if certs := Items(summary.Certifications); len(certs) > 0 {
			return certs
		}
	}
	if parsed != nil {
		return Items(parsed.Certifications)
	}
	return nil
}

// DecodeParsedRecord decodes a producer payload. Only a payload that is not a
// JSON object is rejected; every field problem degrades to "absent".
func DecodeParsedRecord(data []byte) (*ParsedRecord, error) {
	var rec ParsedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: parsed record: %w", ErrSchemaViolation, err)
	}
	return &rec, nil
}

// DecodeSummaryRecord decodes a producer summary payload.
func DecodeSummaryRecord(data []byte) (*SummaryRecord, error) {
	var rec SummaryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: summary record: %w", ErrSchemaViolation, err)
	}
	return &rec, nil
}
