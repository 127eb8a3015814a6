package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("resume"), 0o600))
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.pdf", "a.DOCX", "notes.md", ".hidden.pdf")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o700))

	explicit := filepath.Join(dir, "notes.md")
	paths, err := expandPaths([]string{dir, explicit}, []string{".pdf", ".docx"})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.DOCX"),
		filepath.Join(dir, "b.pdf"),
		explicit,
	}, paths)
}

func TestExpandPaths_Missing(t *testing.T) {
	_, err := expandPaths([]string{filepath.Join(t.TempDir(), "nope.pdf")}, nil)

	assert.Error(t, err)
}

func TestIngestCmd_Batch(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	dir := t.TempDir()
	writeFiles(t, dir, "jane.pdf", "john.txt")

	out, err := runCommand("ingest", dir, "-w", "3")

	require.NoError(t, err)
	assert.Len(t, ts.ingest.paths, 2)
	assert.Equal(t, 3, ts.ingest.workers)
	assert.Contains(t, out, "ok      jane.pdf -> #1 Candidate (score 90, grade A, 0 issues)")
	assert.Contains(t, out, "2 ingested, 0 skipped, 0 failed (run run-1)")
}

func TestIngestCmd_WorkersFromSettings(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.settings.settings.Ingest.Workers = 4

	dir := t.TempDir()
	writeFiles(t, dir, "jane.pdf")

	_, err := runCommand("ingest", filepath.Join(dir, "jane.pdf"))

	require.NoError(t, err)
	assert.Equal(t, 4, ts.ingest.workers)
}

func TestIngestCmd_FailureReturnsError(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.ingest.fail = true

	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf")

	out, err := runCommand("ingest", dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed")
	assert.Contains(t, out, "failed  a.pdf:")
	assert.Contains(t, out, "ok      b.pdf")
}

func TestIngestCmd_NoFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("ingest", t.TempDir())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	writeFiles(t, dir, "jane.pdf")

	out, err := runCommand("ingest", dir, "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "run-1"`)
	assert.Contains(t, out, `"status": "ingested"`)
}

func TestIngestCmd_WatchNeedsOneDir(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("ingest", "--watch", "a", "b")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := runCommand("ingest", "x.pdf")

	assert.ErrorIs(t, err, errNoIngest)
}

func TestLoadCmd(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	out, err := runCommand("load", "/archive")

	require.NoError(t, err)
	assert.Equal(t, []string{"/archive"}, ts.ingest.paths)
	assert.Contains(t, out, "skipped anon: "+domain.ErrMissingName.Error())
	assert.Contains(t, out, "1 ingested, 1 skipped, 0 failed (run run-2)")
}

func TestValidateCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	parsed := filepath.Join(dir, "jane.parsed.json")
	summary := filepath.Join(dir, "jane.summary.json")
	require.NoError(t, os.WriteFile(parsed, []byte(`{"name": "Jane Doe"}`), 0o600))
	require.NoError(t, os.WriteFile(summary, []byte(`{"name": "Jane Doe"}`), 0o600))

	out, err := runCommand("validate", parsed, summary)

	require.NoError(t, err)
	assert.Contains(t, out, "Quality score: 97 (grade A)")
	assert.Contains(t, out, "[Formatting]\n  phone: not in canonical format")
	assert.Contains(t, out, "Missing optional: linkedin")
}

func TestValidateCmd_BadJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	parsed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(parsed, []byte(`{"name":`), 0o600))

	_, err := runCommand("validate", parsed, parsed)

	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
}
