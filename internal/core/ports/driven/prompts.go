package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptResumeParse is the system prompt that extracts a ParsedRecord.
	// The file name and resume text are sent as the user message.
	PromptResumeParse = "resume_parse"

	// PromptResumeSummary is the system prompt that derives a SummaryRecord.
	// The file name and parsed record JSON are sent as the user message.
	PromptResumeSummary = "resume_summary"
)
