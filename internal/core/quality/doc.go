// Package quality assesses extracted resume records.
//
// Validate is pure and total: it never fails, never performs I/O, and
// tolerates nil or partially populated records. Its findings are data that
// callers persist alongside the candidate.
//
// # Import Rules
//
//   - Can Import: domain, standard library
//   - Cannot Import: adapters, services
package quality
