package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

var (
	candidatesJSON bool
	deleteYes      bool
)

var candidatesCmd = &cobra.Command{
	Use:     "candidates",
	Aliases: []string{"candidate"},
	Short:   "List, show and delete candidates",
	RunE:    runCandidatesList,
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all candidates",
	RunE:  runCandidatesList,
}

var candidatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a candidate with experience, education, skills and data quality",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesShow,
}

var candidatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a candidate and every row derived from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesDelete,
}

func init() {
	candidatesCmd.PersistentFlags().BoolVar(&candidatesJSON, "json", false, "output as JSON")
	candidatesDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")

	candidatesCmd.AddCommand(candidatesListCmd)
	candidatesCmd.AddCommand(candidatesShowCmd)
	candidatesCmd.AddCommand(candidatesDeleteCmd)
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidatesList(cmd *cobra.Command, _ []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	candidates, err := candidateService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	if candidatesJSON {
		return printJSON(cmd, candidates)
	}

	if len(candidates) == 0 {
		cmd.Println("No candidates. Run 'resume-warehouse ingest <files>' to add some.")
		return nil
	}

	for _, c := range candidates {
		cmd.Printf("  #%-4d %-28s %s\n", c.ID, c.Name, roleLine(c.CurrentTitle, c.CurrentCompany))
	}
	cmd.Printf("\n%d candidate(s)\n", len(candidates))
	return nil
}

func runCandidatesShow(cmd *cobra.Command, args []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}

	detail, err := candidateService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get candidate: %w", err)
	}

	if candidatesJSON {
		return printJSON(cmd, detail)
	}

	printCandidate(cmd, detail)
	return nil
}

func runCandidatesDelete(cmd *cobra.Command, args []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}

	if !deleteYes {
		detail, err := candidateService.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get candidate: %w", err)
		}
		if !confirm(cmd, fmt.Sprintf("Delete candidate #%d %s?", id, detail.Candidate.Name)) {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := candidateService.Delete(cmd.Context(), id); err != nil {
		return err
	}
	cmd.Printf("Deleted candidate #%d\n", id)
	return nil
}

func parseCandidateID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a candidate id", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

func printCandidate(cmd *cobra.Command, d *domain.CandidateDetail) {
	c := d.Candidate
	cmd.Printf("%s (#%d)\n", c.Name, c.ID)
	cmd.Println(strings.Repeat("=", len(c.Name)+len(strconv.FormatInt(c.ID, 10))+4))
	cmd.Printf("  Current:    %s\n", roleLine(c.CurrentTitle, c.CurrentCompany))
	cmd.Printf("  Experience: %s\n", pluralYears(c.YearsExperience))
	printField(cmd, "Sector", c.PrimarySector)
	printField(cmd, "Approach", c.InvestmentApproach)
	printField(cmd, "Geography", c.PrimaryGeography)
	printField(cmd, "Education", c.EducationHighlight)
	if len(c.Certifications) > 0 {
		printField(cmd, "Certified", strings.Join(c.Certifications, ", "))
	}
	printField(cmd, "Resume", c.ResumePath)

	if c.SummaryBlurb != "" {
		cmd.Printf("\n%s\n", c.SummaryBlurb)
	}

	if len(d.Experiences) > 0 {
		cmd.Println("\n[Experience]")
		for _, e := range d.Experiences {
			cmd.Printf("  %s\n", roleLine(e.Title, e.Company))
			if e.StartDate != "" || e.EndDate != "" {
				cmd.Printf("    %s - %s\n", e.StartDate, e.EndDate)
			}
			for _, b := range e.BulletPoints {
				cmd.Printf("    - %s\n", b)
			}
		}
	}

	if len(d.Education) > 0 {
		cmd.Println("\n[Education]")
		for _, e := range d.Education {
			line := strings.TrimSpace(strings.Join([]string{e.Degree, e.Major}, " "))
			if e.School != "" {
				line += ", " + e.School
			}
			if e.Honors != "" {
				line += " (" + e.Honors + ")"
			}
			cmd.Printf("  %s\n", strings.TrimPrefix(line, ", "))
		}
	}

	if len(d.Skills) > 0 {
		skills := make([]string, len(d.Skills))
		for i, s := range d.Skills {
			skills[i] = s.Skill
		}
		cmd.Println("\n[Skills]")
		cmd.Printf("  %s\n", strings.Join(skills, ", "))
	}

	if q := d.Quality; q != nil {
		cmd.Println("\n[Data Quality]")
		cmd.Printf("  Score: %d (grade %s), %d issue(s)\n", q.QualityScore, q.Grade, q.TotalIssues)
		for _, issue := range q.Issues.All() {
			cmd.Printf("  %-10s %s: %s\n", issue.Severity, issue.Field, issue.Message)
		}
	}
}

func printField(cmd *cobra.Command, label, value string) {
	if value != "" {
		cmd.Printf("  %-11s %s\n", label+":", value)
	}
}

var (
	statsJSON   bool
	filtersJSON bool
	initReset   bool
	initYes     bool
)

var filtersCmd = &cobra.Command{
	Use:   "filters [field]",
	Short: "List filter values",
	Long: `Lists the known values of a filter field, or every field when none is given.

Fields: geography, sector, approach, skill, company, school, degree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilters,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List search term suggestions",
	RunE:  runSuggest,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show warehouse statistics",
	RunE:  runStats,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the full-text index from stored candidates",
	RunE:  runReindex,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse schema",
	Long: `Creates the warehouse database and schema if they do not exist.
With --reset every candidate is deleted and the schema is recreated.`,
	RunE: runInit,
}

func init() {
	filtersCmd.Flags().BoolVar(&filtersJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	initCmd.Flags().BoolVar(&initReset, "reset", false, "delete all data and recreate the schema")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(initCmd)
}

func runFilters(cmd *cobra.Command, args []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	fields := domain.AllFilterFields()
	if len(args) == 1 {
		fields = []domain.FilterField{domain.FilterField(strings.ToLower(args[0]))}
	}

	all := make(map[string][]string, len(fields))
	for _, f := range fields {
		values, err := candidateService.FilterValues(cmd.Context(), f)
		if err != nil {
			return err
		}
		if values == nil {
			values = []string{}
		}
		all[f.String()] = values
	}

	if filtersJSON {
		return printJSON(cmd, all)
	}

	for _, f := range fields {
		values := all[f.String()]
		cmd.Printf("[%s] (%d)\n", f, len(values))
		for _, v := range values {
			cmd.Printf("  %s\n", v)
		}
	}
	return nil
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	suggestions, err := candidateService.Suggestions(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range suggestions {
		cmd.Println(s)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	stats, err := candidateService.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if statsJSON {
		return printJSON(cmd, stats)
	}

	cmd.Println("Warehouse")
	cmd.Println("=========")
	cmd.Printf("  Candidates:    %d\n", stats.Candidates)
	cmd.Printf("  Experiences:   %d\n", stats.Experiences)
	cmd.Printf("  Education:     %d\n", stats.Education)
	cmd.Printf("  Skills:        %d\n", stats.Skills)
	cmd.Printf("  Filter values: %d\n", stats.FilterValues)
	cmd.Println()
	cmd.Println("Data Quality")
	cmd.Println("============")
	cmd.Printf("  Average score:   %.1f\n", stats.AverageScore)
	cmd.Printf("  Total issues:    %d\n", stats.TotalIssues)
	cmd.Printf("  Critical issues: %d\n", stats.CriticalIssues)

	grades := make([]string, 0, len(stats.GradeDistribution))
	for g := range stats.GradeDistribution {
		grades = append(grades, g.String())
	}
	sort.Strings(grades)
	for _, g := range grades {
		cmd.Printf("  Grade %s: %d\n", g, stats.GradeDistribution[domain.Grade(g)])
	}
	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	n, err := candidateService.Reindex(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Reindexed %d candidate(s)\n", n)
	return nil
}

func runInit(cmd *cobra.Command, _ []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	if initReset {
		if !initYes && !confirm(cmd, "Delete every candidate and recreate the schema?") {
			cmd.Println("Cancelled.")
			return nil
		}
		if err := candidateService.Reset(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Warehouse reset.")
		return nil
	}

	// Opening the store applied any pending migrations.
	cmd.Println("Warehouse ready.")
	return nil
}
