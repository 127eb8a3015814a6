package domain

import (
	"encoding/json"
	"time"
)

// IngestStatus is the result class of one ingestion.
type IngestStatus string

// Ingestion statuses.
const (
	// IngestStatusIngested means the candidate was written to the warehouse.
	IngestStatusIngested IngestStatus = "ingested"

	// IngestStatusSkipped means the record was validated but not written,
	// for example because the candidate name is missing.
	IngestStatusSkipped IngestStatus = "skipped"

	// IngestStatusFailed means extraction, production or the write failed.
	IngestStatusFailed IngestStatus = "failed"
)

// IngestOutcome reports what happened to one resume.
type IngestOutcome struct {
	Path        string            `json:"path"`
	Name        string            `json:"name,omitempty"`
	CandidateID int64             `json:"candidate_id,omitempty"`
	Status      IngestStatus      `json:"status"`
	Validation  *ValidationResult `json:"validation,omitempty"`
	Err         error             `json:"-"`
	Duration    time.Duration     `json:"duration"`
}

// Error returns the failure message, or "" on success.
func (o IngestOutcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// MarshalJSON adds the failure message as "error".
func (o IngestOutcome) MarshalJSON() ([]byte, error) {
	type plain IngestOutcome
	return json.Marshal(struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(o), Error: o.Error()})
}

// BatchReport aggregates the outcomes of a batch ingestion.
type BatchReport struct {
	RunID    string          `json:"run_id"`
	Outcomes []IngestOutcome `json:"outcomes"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
}

// Count returns the number of outcomes with the given status.
func (r BatchReport) Count(status IngestStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Failed returns true if any outcome failed.
func (r BatchReport) Failed() bool {
	return r.Count(IngestStatusFailed) > 0
}
