// Package driving defines the interfaces the CLI and the MCP server use to
// reach the warehouse: ingestion, candidate queries and settings.
//
//   - IngestService: Validate, IngestRecord, IngestFile, IngestBatch, Watch, LoadArchive.
//   - CandidateService: Search, Get, List, Delete, FilterValues, Suggestions, Stats, Reindex, Reset.
//   - SettingsService: read and change persisted settings.
//
// Implementations live in internal/core/services.
package driving
