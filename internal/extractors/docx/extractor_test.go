package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX writes a minimal DOCX file holding documentXML.
func createTestDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".docx"}, New().Extensions())
}

func TestExtract_Paragraphs(t *testing.T) {
	path := createTestDOCX(t, wrapBody(`
		<w:p><w:r><w:t>Jane </w:t></w:r><w:r><w:t>Doe</w:t></w:r></w:p>
		<w:p></w:p>
		<w:p><w:r><w:t>Equity Analyst</w:t></w:r><w:r><w:tab/><w:t>2019</w:t></w:r></w:p>
		<w:p><w:hyperlink><w:r><w:t>jane@example.com</w:t></w:r></w:hyperlink></w:p>`))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEquity Analyst 2019\njane@example.com", text)
}

func TestExtract_TablesAfterParagraphs(t *testing.T) {
	path := createTestDOCX(t, wrapBody(`
		<w:tbl>
			<w:tr>
				<w:tc><w:p><w:r><w:t>Python</w:t></w:r></w:p></w:tc>
				<w:tc><w:p><w:r><w:t>5 years</w:t></w:r></w:p></w:tc>
			</w:tr>
			<w:tr>
				<w:tc><w:p></w:p></w:tc>
				<w:tc><w:p><w:r><w:t>CFA</w:t></w:r></w:p><w:p><w:r><w:t>Level II</w:t></w:r></w:p></w:tc>
			</w:tr>
		</w:tbl>
		<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nPython\n5 years\nCFA Level II", text)
}

func TestExtract_Empty(t *testing.T) {
	path := createTestDOCX(t, wrapBody(`<w:p></w:p>`))
	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	path := createTestDOCX(t, "")
	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), documentPart)
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_MalformedXML(t *testing.T) {
	path := createTestDOCX(t, `<w:document `+wordNS+`><w:body><w:p>`)
	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
