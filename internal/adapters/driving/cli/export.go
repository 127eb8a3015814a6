package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export every candidate to an Excel workbook",
	Long: `Writes one sheet of candidates plus sheets of their experience, education
and data quality issues. Candidate rows are coloured by quality grade.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if candidateService == nil {
		return errNoCandidates
	}
	if exporter == nil {
		return errors.New("exporter not configured")
	}

	candidates, err := candidateService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	details := make([]domain.CandidateDetail, 0, len(candidates))
	for _, c := range candidates {
		d, err := candidateService.Get(cmd.Context(), c.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to get candidate %d: %w", c.ID, err)
		}
		details = append(details, *d)
	}

	if err := exporter.Export(args[0], details); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	cmd.Printf("Exported %d candidate(s) to %s\n", len(details), args[0])
	return nil
}
