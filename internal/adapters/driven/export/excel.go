// Package export writes warehouse candidates to spreadsheet files.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// Sheet names of the exported workbook.
const (
	SheetCandidates = "Candidates"
	SheetExperience = "Experience"
	SheetEducation  = "Education"
	SheetQuality    = "Data Quality"
)

var candidateHeaders = []string{
	"ID", "Name", "Current Title", "Current Company", "Years", "Sector",
	"Approach", "Geography", "Highest Degree", "Top Skills", "Certifications",
	"Quality Score", "Grade", "Summary", "Resume",
}

var experienceHeaders = []string{
	"Candidate ID", "Name", "Position", "Company", "Title", "Start", "End",
	"Sectors", "Approach", "Sharpe Ratio", "Alpha",
}

var educationHeaders = []string{"Candidate ID", "Name", "Degree", "Major", "School", "Honors"}

var qualityHeaders = []string{"Candidate ID", "Name", "Severity", "Field", "Message"}

// gradeFills colours candidate rows by quality grade.
var gradeFills = map[domain.Grade]string{
	domain.GradeA: "C6EFCE",
	domain.GradeB: "E2EFDA",
	domain.GradeC: "FFEB9C",
	domain.GradeD: "FFC7CE",
	domain.GradeF: "FF9999",
}

// ExcelExporter writes candidates to an .xlsx workbook.
type ExcelExporter struct{}

// NewExcelExporter creates an exporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export writes one row per candidate plus their experience, education and
// quality issues to path. A missing .xlsx extension is appended.
func (e *ExcelExporter) Export(path string, details []domain.CandidateDetail) (err error) {
	if path == "" {
		return fmt.Errorf("%w: export path is empty", domain.ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		path += ".xlsx"
	}

	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := f.SetSheetName("Sheet1", SheetCandidates); err != nil {
		return err
	}
	for _, name := range []string{SheetExperience, SheetEducation, SheetQuality} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	sheets := []struct {
		name    string
		headers []string
		write   func(*excelize.File, []domain.CandidateDetail) error
	}{
		{SheetCandidates, candidateHeaders, writeCandidates},
		{SheetExperience, experienceHeaders, writeExperience},
		{SheetEducation, educationHeaders, writeEducation},
		{SheetQuality, qualityHeaders, writeQuality},
	}
	for _, s := range sheets {
		if err := writeHeader(f, s.name, s.headers, header); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
		if err := s.write(f, details); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeCandidates(f *excelize.File, details []domain.CandidateDetail) error {
	styles := make(map[domain.Grade]int, len(gradeFills))
	for g, color := range gradeFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		styles[g] = id
	}

	for i, d := range details {
		row := i + 2
		c := d.Candidate

		degrees := make([]string, len(d.Education))
		for j, e := range d.Education {
			degrees[j] = e.Degree
		}

		var score any
		var grade domain.Grade
		if d.Quality != nil {
			score = d.Quality.QualityScore
			grade = d.Quality.Grade
		}

		values := []any{
			c.ID, c.Name, c.CurrentTitle, c.CurrentCompany, c.YearsExperience,
			c.PrimarySector, c.InvestmentApproach, c.PrimaryGeography,
			domain.HighestDegree(degrees), strings.Join(c.TopSkills, ", "),
			strings.Join(c.Certifications, ", "), score, grade.String(),
			c.SummaryBlurb, c.ResumePath,
		}
		if err := writeRow(f, SheetCandidates, row, values); err != nil {
			return err
		}

		if style, ok := styles[grade]; ok {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(candidateHeaders), row)
			if err := f.SetCellStyle(SheetCandidates, first, last, style); err != nil {
				return err
			}
		}
	}

	if len(details) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(candidateHeaders), len(details)+1)
		if err := f.AutoFilter(SheetCandidates, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetCandidates, "B", "D", 28)
}

func writeExperience(f *excelize.File, details []domain.CandidateDetail) error {
	row := 2
	for _, d := range details {
		for _, e := range d.Experiences {
			var sharpe any
			if e.SharpeRatio != nil {
				sharpe = *e.SharpeRatio
			}
			values := []any{
				d.Candidate.ID, d.Candidate.Name, e.Position, e.Company, e.Title,
				e.StartDate, e.EndDate, strings.Join(e.Sectors, ", "), e.Approach,
				sharpe, e.Alpha,
			}
			if err := writeRow(f, SheetExperience, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetExperience, "D", "E", 28)
}

func writeEducation(f *excelize.File, details []domain.CandidateDetail) error {
	row := 2
	for _, d := range details {
		for _, e := range d.Education {
			values := []any{d.Candidate.ID, d.Candidate.Name, e.Degree, e.Major, e.School, e.Honors}
			if err := writeRow(f, SheetEducation, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetEducation, "C", "E", 28)
}

func writeQuality(f *excelize.File, details []domain.CandidateDetail) error {
	row := 2
	for _, d := range details {
		if d.Quality == nil {
			continue
		}
		for _, issue := range d.Quality.Issues.All() {
			values := []any{d.Candidate.ID, d.Candidate.Name, string(issue.Severity), issue.Field, issue.Message}
			if err := writeRow(f, SheetQuality, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetQuality, "E", "E", 60)
}
