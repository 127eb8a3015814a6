package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchReport_Count(t *testing.T) {
	r := BatchReport{Outcomes: []IngestOutcome{
		{Status: IngestStatusIngested},
		{Status: IngestStatusSkipped, Err: ErrMissingName},
		{Status: IngestStatusIngested},
	}}

	assert.Equal(t, 2, r.Count(IngestStatusIngested))
	assert.Equal(t, 1, r.Count(IngestStatusSkipped))
	assert.False(t, r.Failed())

	r.Outcomes = append(r.Outcomes, IngestOutcome{Status: IngestStatusFailed, Err: errors.New("boom")})
	assert.True(t, r.Failed())
}

func TestIngestOutcome_Error(t *testing.T) {
	assert.Equal(t, "", IngestOutcome{}.Error())
	assert.Equal(t, ErrMissingName.Error(), IngestOutcome{Err: ErrMissingName}.Error())
}

func TestIngestOutcome_MarshalJSONIncludesError(t *testing.T) {
	data, err := json.Marshal(IngestOutcome{Path: "a.pdf", Status: IngestStatusSkipped, Err: ErrMissingName})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error":"candidate name missing"`)
	assert.Contains(t, string(data), `"status":"skipped"`)

	data, err = json.Marshal(IngestOutcome{Path: "b.pdf", Status: IngestStatusIngested})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)
}
