package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

func writeHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".html", ".htm"}, New().Extensions())
}

func TestExtract(t *testing.T) {
	path := writeHTML(t, `<!DOCTYPE html>
<html>
<head><title>CV</title><style>body { color: red; }</style></head>
<body>
  <nav>Home | About</nav>
  <h1>Jane   Doe</h1>
  <p>Equity Analyst<br>New York</p>
  <ul><li>Python</li><li>DCF <b>modelling</b></li></ul>
  <table><tr><td>CFA</td><td>Level II</td></tr></table>
  <script>alert("x")</script>
</body>
</html>`)

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEquity Analyst\nNew York\nPython\nDCF modelling\nCFA Level II", text)
}

func TestExtract_Fragment(t *testing.T) {
	path := writeHTML(t, `<div>Jane Doe</div><div>Analyst</div>`)
	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nAnalyst", text)
}

func TestExtract_NoVisibleText(t *testing.T) {
	path := writeHTML(t, `<html><body><script>var a = 1;</script><style>p{}</style></body></html>`)
	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_Missing(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc", cleanWhitespace("  a \t b \n\n   \n c  "))
	assert.Equal(t, "", cleanWhitespace(" \n \n"))
}
