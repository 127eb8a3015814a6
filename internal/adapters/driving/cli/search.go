package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

var (
	searchLimit   int
	searchOffset  int
	searchJSON    bool
	searchFilters domain.SearchFilters
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search candidates",
	Long: `Performs a ranked full-text search (BM25) over candidate names, titles,
companies, skills, experience, education and certifications.

The query supports AND, OR, NOT, "exact phrases" and prefix* terms.
Without a query every candidate matching the filters is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	flags := searchCmd.Flags()
	flags.IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	flags.IntVar(&searchOffset, "offset", 0, "number of results to skip")
	flags.BoolVar(&searchJSON, "json", false, "output results as JSON")
	flags.StringVar(&searchFilters.Geography, "geography", "", "filter by primary geography")
	flags.StringVar(&searchFilters.Sector, "sector", "", "filter by primary sector")
	flags.StringVar(&searchFilters.Approach, "approach", "", "filter by investment approach")
	flags.StringVar(&searchFilters.Skill, "skill", "", "filter by skill")
	flags.StringVar(&searchFilters.Company, "company", "", "filter by company worked at")
	flags.StringVar(&searchFilters.School, "school", "", "filter by school")
	flags.StringVar(&searchFilters.Degree, "degree", "", "filter by degree")
	flags.IntVar(&searchFilters.MinQualityScore, "min-score", 0, "minimum data quality score")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if candidateService == nil {
		return errNoCandidates
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	opts := domain.SearchOptions{
		Limit:   searchLimit,
		Offset:  searchOffset,
		Filters: searchFilters,
	}

	results, err := candidateService.Search(cmd.Context(), query, opts)
	if err != nil {
		return err
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No candidates found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := results[i]
		c := r.Candidate

		// Format: [N] Name - Title at Company (#ID, grade)
		cmd.Printf("  [%d] %s - %s (#%d", i+1, c.Name, roleLine(c.CurrentTitle, c.CurrentCompany), c.ID)
		if r.Grade != "" {
			cmd.Printf(", score %d %s", r.QualityScore, r.Grade)
		}
		cmd.Println(")")

		var facts []string
		if c.YearsExperience > 0 {
			facts = append(facts, pluralYears(c.YearsExperience))
		}
		for _, f := range []string{c.PrimarySector, c.InvestmentApproach, c.PrimaryGeography, r.HighestDegree} {
			if f != "" {
				facts = append(facts, f)
			}
		}
		if len(facts) > 0 {
			cmd.Printf("      %s\n", strings.Join(facts, " | "))
		}
		if len(r.Skills) > 0 {
			cmd.Printf("      Skills: %s\n", strings.Join(firstN(r.Skills, 8), ", "))
		}
		if len(r.MatchedFields) > 0 {
			cmd.Printf("      Matched: %s\n", strings.Join(r.MatchedFields, ", "))
		}
		cmd.Println()
	}

	return nil
}

func roleLine(title, company string) string {
	switch {
	case title != "" && company != "":
		return title + " at " + company
	case title != "":
		return title
	case company != "":
		return company
	default:
		return "no current role"
	}
}

func pluralYears(n int) string {
	if n == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", n)
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
