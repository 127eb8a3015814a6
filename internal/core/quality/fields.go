package quality

import "github.com/custodia-labs/resume-warehouse/internal/core/domain"

// fieldSpec describes one scored field.
type fieldSpec struct {
	name     string
	required bool
	present  func(p *domain.ParsedRecord, s *domain.SummaryRecord) bool
}

// Scoring weights. Optional fields count half.
const (
	requiredWeight = 1.0
	optionalWeight = 0.5
)

// fieldSpecs lists the scored fields in report order.
var fieldSpecs = []fieldSpec{
	{"name", true, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		return p.CandidateName() != ""
	}},
	{"experience", true, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		return len(p.ExperienceList()) > 0
	}},
	{"education", true, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		return len(p.EducationList()) > 0
	}},
	{"skills", true, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		return len(p.SkillList()) > 0
	}},
	{"current_title", true, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return domain.Text(s.CurrentTitle) != ""
	}},
	{"current_company", true, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return domain.Text(s.CurrentCompany) != ""
	}},
	{"years_experience", true, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return s.YearsExperience.Set
	}},
	{"primary_sector", true, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return s.PrimarySector() != ""
	}},
	{"primary_geography", true, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return domain.Text(s.PrimaryGeography) != ""
	}},
	{"investment_approach", true, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return domain.Text(s.InvestmentApproach) != ""
	}},

	{"certifications", false, func(p *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return len(domain.CertificationList(p, s)) > 0
	}},
	{"honors", false, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		for _, edu := range p.EducationList() {
			if domain.Text(edu.Honors) != "" {
				return true
			}
		}
		return false
	}},
	{"sector_tags", false, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		for _, exp := range p.ExperienceList() {
			if len(domain.Items(exp.Sectors)) > 0 {
				return true
			}
		}
		return false
	}},
	{"quant_metrics", false, func(p *domain.ParsedRecord, _ *domain.SummaryRecord) bool {
		for _, exp := range p.ExperienceList() {
			if exp.SharpeRatio.Set || domain.Text(exp.Alpha) != "" || domain.Text(exp.CoverageValue) != "" {
				return true
			}
		}
		return false
	}},
	{"summary_blurb", false, func(_ *domain.ParsedRecord, s *domain.SummaryRecord) bool {
		return domain.Text(s.SummaryBlurb) != ""
	}},
}

// RequiredFields returns the names of the required fields.
func RequiredFields() []string {
	return fieldNames(true)
}

// OptionalFields returns the names of the optional fields.
func OptionalFields() []string {
	return fieldNames(false)
}

func fieldNames(required bool) []string {
	var names []string
	for _, f := range fieldSpecs {
		if f.required == required {
			names = append(names, f.name)
		}
	}
	return names
}
