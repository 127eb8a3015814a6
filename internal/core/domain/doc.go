// Package domain defines the core business entities for the resume warehouse.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ParsedRecord: The full structured extraction of a resume
//   - SummaryRecord: The executive summary derived from a ParsedRecord
//   - ValidationResult: The quality assessment of a record pair
//   - Candidate: The normalised warehouse row and its children
//   - SearchResult: A ranked candidate returned by the query layer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
