package driven

import (
	"context"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// StructuredProducer turns resume text into structured records.
// Output is partial: absent or malformed fields are left unset, not rejected.
type StructuredProducer interface {
	// Parse extracts a ParsedRecord from resume text. The file name is a
	// hint for the candidate name.
	Parse(ctx context.Context, filename, text string) (*domain.ParsedRecord, error)

	// Summarise derives a SummaryRecord from a ParsedRecord.
	Summarise(ctx context.Context, filename string, parsed *domain.ParsedRecord) (*domain.SummaryRecord, error)
}
