// Package sqlite provides the SQLite-based resume warehouse.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single Store implements
// driven.WarehouseStore over one database:
//
//   - parsed_resumes: verbatim archive of every ParsedRecord
//   - candidates, experiences, education, skills: the normalised projection
//   - quality_scores: the validation result of each candidate
//   - filter_values: the deduplicated filter cache
//   - candidates_fts: the FTS5 full-text index
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.resume-warehouse/data/warehouse.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Each ingestion is one transaction,
// started with BEGIN IMMEDIATE, and re-ingestion of the same candidate is
// serialised by a per-identity lock.
package sqlite
