package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func fakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Jane Doe.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake pdf content"), 0o600))
	return path
}

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.IsType(t, execRunner{}, e.runner)
	assert.Equal(t, []string{".pdf"}, e.Extensions())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{}
	e := NewWithRunner(runner)
	assert.Equal(t, runner, e.runner)
}

func TestExtract_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("Jane Doe      \n\n  Equity Analyst\f\n")}
	path := fakePDF(t)

	text, err := NewWithRunner(runner).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\n  Equity Analyst", text)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", path, "-"}, runner.args)
}

func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}
	_, err := NewWithRunner(runner).Extract(context.Background(), fakePDF(t))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestExtract_ToolMissing(t *testing.T) {
	runner := &mockRunner{err: ErrPDFToolNotFound}
	_, err := NewWithRunner(runner).Extract(context.Background(), fakePDF(t))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.Contains(t, err.Error(), "brew install poppler")
}

func TestExtract_NoTextLayer(t *testing.T) {
	runner := &mockRunner{output: []byte("\f\n  \n")}
	_, err := NewWithRunner(runner).Extract(context.Background(), fakePDF(t))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "no text layer")
}

func TestExtract_MissingFile(t *testing.T) {
	runner := &mockRunner{output: []byte("text")}
	_, err := NewWithRunner(runner).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Empty(t, runner.name)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

// Integration test - only runs if pdftotext is available.
func TestExtract_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}

	_, err := New().Extract(context.Background(), fakePDF(t))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
