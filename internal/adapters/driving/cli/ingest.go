package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

var (
	ingestWorkers int
	ingestWatch   bool
	ingestJSON    bool
	loadJSON      bool
	validateJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest resume files into the warehouse",
	Long: `Extracts text from each resume, asks the configured LLM for a structured
record and an executive summary, scores the data quality and writes the
candidate to the warehouse. Directories are expanded to the resume files
they contain. Re-ingesting a file replaces the candidate it produced before.

A file that fails is reported and does not stop the batch.

Use --watch to keep running and ingest files as they are added to a directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var loadCmd = &cobra.Command{
	Use:   "load <archive-dir>",
	Short: "Load archived records without calling the LLM",
	Long: `Re-ingests every <name>.parsed.json / <name>.summary.json pair found in the
archive directory. Archives are written by ingest when ingest.archive_dir is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

var validateCmd = &cobra.Command{
	Use:   "validate <parsed.json> <summary.json>",
	Short: "Score a record pair without storing it",
	Args:  cobra.ExactArgs(2),
	RunE:  runValidate,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "resumes processed concurrently (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "watch the directory argument for new resumes")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the batch report as JSON")
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "output the batch report as JSON")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the validation result as JSON")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(validateCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNoIngest
	}

	if ingestWatch {
		return runWatch(cmd, args)
	}

	paths, err := expandPaths(args, resumeExtensions)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no resume files found", domain.ErrInvalidInput)
	}

	workers := ingestWorkers
	if workers <= 0 && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			workers = settings.Ingest.Workers
		}
	}

	report := ingestService.IngestBatch(cmd.Context(), paths, workers)
	if ingestJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}

	if report.Failed() {
		return fmt.Errorf("%d of %d file(s) failed", report.Count(domain.IngestStatusFailed), len(report.Outcomes))
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: --watch takes exactly one directory", domain.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for new resumes (Ctrl+C to stop)\n", args[0])
	return ingestService.Watch(ctx, args[0], func(o domain.IngestOutcome) {
		printOutcome(cmd, o)
	})
}

func runLoad(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNoIngest
	}

	report := ingestService.LoadArchive(cmd.Context(), args[0])
	if loadJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}

	if report.Failed() {
		return fmt.Errorf("%d of %d record(s) failed", report.Count(domain.IngestStatusFailed), len(report.Outcomes))
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNoIngest
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	parsed, err := domain.DecodeParsedRecord(data)
	if err != nil {
		return err
	}

	data, err = os.ReadFile(args[1])
	if err != nil {
		return err
	}
	summary, err := domain.DecodeSummaryRecord(data)
	if err != nil {
		return err
	}

	result := ingestService.Validate(parsed, summary)
	if validateJSON {
		return printJSON(cmd, result)
	}
	printValidation(cmd, result)
	return nil
}

// expandPaths replaces directories with the files inside them whose
// extension is in exts. Files named explicitly are always kept.
func expandPaths(args []string, exts []string) ([]string, error) {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = true
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printReport(cmd *cobra.Command, report domain.BatchReport) {
	for _, o := range report.Outcomes {
		printOutcome(cmd, o)
	}
	cmd.Printf("\n%d ingested, %d skipped, %d failed (run %s)\n",
		report.Count(domain.IngestStatusIngested),
		report.Count(domain.IngestStatusSkipped),
		report.Count(domain.IngestStatusFailed),
		report.RunID)
}

func printOutcome(cmd *cobra.Command, o domain.IngestOutcome) {
	file := filepath.Base(o.Path)
	switch o.Status {
	case domain.IngestStatusIngested:
		cmd.Printf("  ok      %s -> #%d %s", file, o.CandidateID, o.Name)
		if o.Validation != nil {
			cmd.Printf(" (score %d, grade %s, %d issues)",
				o.Validation.QualityScore, o.Validation.Grade, o.Validation.TotalIssues)
		}
		cmd.Println()
	case domain.IngestStatusSkipped:
		cmd.Printf("  skipped %s: %s\n", file, o.Error())
	default:
		cmd.Printf("  failed  %s: %s\n", file, o.Error())
	}
}

func printValidation(cmd *cobra.Command, v domain.ValidationResult) {
	cmd.Printf("Quality score: %d (grade %s)\n", v.QualityScore, v.Grade)
	cmd.Printf("Issues: %d\n", v.TotalIssues)

	groups := []struct {
		label  string
		issues []domain.Issue
	}{
		{"Critical", v.Issues.Critical},
		{"Formatting", v.Issues.Formatting},
		{"Warning", v.Issues.Warning},
	}
	for _, g := range groups {
		if len(g.issues) == 0 {
			continue
		}
		cmd.Printf("\n[%s]\n", g.label)
		for _, issue := range g.issues {
			cmd.Printf("  %s: %s\n", issue.Field, issue.Message)
		}
	}

	if len(v.Completeness.MissingRequired) > 0 {
		cmd.Printf("\nMissing required: %s\n", strings.Join(v.Completeness.MissingRequired, ", "))
	}
	if len(v.Completeness.MissingOptional) > 0 {
		cmd.Printf("Missing optional: %s\n", strings.Join(v.Completeness.MissingOptional, ", "))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
