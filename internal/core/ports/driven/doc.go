// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - WarehouseStore: Candidate persistence, full-text search and filters (SQLite)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TextExtractor / ExtractorRegistry: Resume text extraction. Without it only archives load.
//   - StructuredProducer: Resume text to structured records. Without it only archives load.
//   - LLMService: Language model operations backing the producer.
//   - PromptStore: Editable prompt templates. Without it embedded defaults are used.
//   - DirWatcher: Directory watching for continuous ingestion.
//   - IngestObserver / SearchObserver: Ingestion and search metrics.
package driven
