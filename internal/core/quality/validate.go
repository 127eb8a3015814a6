package quality

import (
	"fmt"
	"math"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// Grade thresholds; each band includes its lower bound.
const (
	thresholdA = 90
	thresholdB = 75
	thresholdC = 60
	thresholdD = 40
)

// Validate scores a record pair and lists its issues.
// Either record may be nil; a nil record is treated as empty.
func Validate(parsed *domain.ParsedRecord, summary *domain.SummaryRecord) domain.ValidationResult {
	if parsed == nil {
		parsed = &domain.ParsedRecord{}
	}
	if summary == nil {
		summary = &domain.SummaryRecord{}
	}

	completeness := domain.Completeness{
		MissingRequired: []string{},
		MissingOptional: []string{},
	}
	var reqPresent, optPresent, reqTotal, optTotal float64
	for _, f := range fieldSpecs {
		ok := f.present(parsed, summary)
		switch {
		case f.required:
			reqTotal++
			if ok {
				reqPresent++
			} else {
				completeness.MissingRequired = append(completeness.MissingRequired, f.name)
			}
		default:
			optTotal++
			if ok {
				optPresent++
			} else {
				completeness.MissingOptional = append(completeness.MissingOptional, f.name)
			}
		}
	}

	score := Score(reqPresent, optPresent, reqTotal, optTotal)
	issues := collectIssues(parsed, summary)

	return domain.ValidationResult{
		QualityScore: score,
		Grade:        GradeFor(score),
		TotalIssues:  issues.Total(),
		Issues:       issues,
		Completeness: completeness,
	}
}

// Score computes the weighted completeness percentage, rounded half away
// from zero and clamped to [0, 100].
func Score(reqPresent, optPresent, reqTotal, optTotal float64) int {
	denom := requiredWeight*reqTotal + optionalWeight*optTotal
	if denom <= 0 {
		return 0
	}
	raw := 100 * (requiredWeight*reqPresent + optionalWeight*optPresent) / denom
	return int(math.Max(0, math.Min(100, math.Round(raw))))
}

// GradeFor maps a score to its letter grade.
func GradeFor(score int) domain.Grade {
	switch {
	case score >= thresholdA:
		return domain.GradeA
	case score >= thresholdB:
		return domain.GradeB
	case score >= thresholdC:
		return domain.GradeC
	case score >= thresholdD:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

func collectIssues(parsed *domain.ParsedRecord, summary *domain.SummaryRecord) domain.IssueSet {
	set := domain.NewIssueSet()
	critical := func(field, format string, args ...any) {
		set.Add(domain.Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: domain.SeverityCritical})
	}
	formatting := func(field, format string, args ...any) {
		set.Add(domain.Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: domain.SeverityFormatting})
	}
	warning := func(field, format string, args ...any) {
		set.Add(domain.Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: domain.SeverityWarning})
	}

	exps := parsed.ExperienceList()
	edus := parsed.EducationList()

	if parsed.CandidateName() == "" {
		critical("name", "Missing candidate name")
	}
	if len(exps) == 0 {
		critical("experiences", "No work experience found")
	}
	if len(parsed.SkillList()) == 0 {
		critical("skills", "No skills listed")
	}

	if name := parsed.CandidateName(); name != "" && !IsTitleCase(name) {
		formatting("name", "Name not in Title Case: %q", name)
	}
	if name := domain.Text(summary.Name); name != "" && !IsTitleCase(name) {
		formatting("summary.name", "Summary name not in Title Case: %q", name)
	}
	if summary.YearsExperience.Malformed {
		formatting("summary.years_experience", "Years of experience should be numeric")
	}
	if parsed.YearsExperience.Malformed {
		formatting("years_experience", "Years of experience should be numeric")
	}

	for i, exp := range exps {
		label := fmt.Sprintf("Experience #%d (%s)", i+1, companyLabel(exp))
		field := fmt.Sprintf("experiences[%d]", i)
		checkDate(formatting, field+".start", label, "start", exp.Start)
		checkDate(formatting, field+".end", label, "end", exp.End)

		switch {
		case exp.SharpeRatio.Provided() && !exp.Alpha.Provided():
			warning(field+".alpha", "%s: sharpe_ratio present without alpha", label)
		case exp.Alpha.Provided() && !exp.SharpeRatio.Provided():
			warning(field+".sharpe_ratio", "%s: alpha present without sharpe_ratio", label)
		}
	}

	hasHonors := false
	for i, edu := range edus {
		label := fmt.Sprintf("Education #%d", i+1)
		field := fmt.Sprintf("education[%d]", i)
		degree := domain.Text(edu.Degree)
		switch {
		case degree == "":
			warning(field+".degree", "%s: Missing degree", label)
		case !IsCanonicalDegree(degree):
			if suggestion := NormalizeDegree(degree); suggestion != degree {
				formatting(field+".degree", "%s: Invalid degree format %q (use %q)", label, degree, suggestion)
			} else {
				formatting(field+".degree", "%s: Invalid degree format %q (expected B.S., MBA, Ph.D., etc.)", label, degree)
			}
		}
		checkDate(formatting, field+".start", label, "start", edu.Start)
		checkDate(formatting, field+".end", label, "end", edu.End)
		if domain.Text(edu.Honors) != "" {
			hasHonors = true
		}
	}

	if len(domain.CertificationList(parsed, summary)) == 0 {
		warning("certifications", "No certifications listed")
	}
	if !hasHonors {
		warning("education.honors", "No honors or awards listed in education")
	}

	return set
}

func checkDate(report func(field, format string, args ...any), field, label, which string, v domain.Opt[string]) {
	if v.Malformed {
		report(field, "%s: %s date is not text", label, which)
		return
	}
	if s := domain.Text(v); !IsCanonicalDate(s) {
		report(field, "%s: Invalid %s date %q (expected MMM-DD-YYYY)", label, which, s)
	}
}

func companyLabel(exp domain.Experience) string {
	if c := domain.Text(exp.Company); c != "" {
		return c
	}
	return "Unknown"
}
