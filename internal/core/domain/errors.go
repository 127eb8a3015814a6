package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a resume file type with no extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	// Extraction of new resumes is disabled; loading archives still works.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrExtractionFailed indicates no usable text could be read from a resume file.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrSchemaViolation indicates producer output that is not a usable record.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrMissingName indicates a record without a candidate name.
	// Such records are validated and reported but never ingested.
	ErrMissingName = errors.New("candidate name missing")

	// ErrConsistencyViolation indicates a write that would break referential integrity.
	// The enclosing transaction is rolled back.
	ErrConsistencyViolation = errors.New("consistency violation")

	// ErrRateLimited indicates the LLM API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
