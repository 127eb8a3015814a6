// Package extractors provides implementations of the TextExtractor interface
// for the resume formats the warehouse ingests. Each extractor knows how to
// read plain text out of files with specific extensions.
//
// Extractors are registered with the Registry at startup; the ingest service
// asks the registry for the extractor matching a file's extension.
package extractors
