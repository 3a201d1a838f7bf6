// File: internal/document/document_test.go
package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/docmend/internal/normalize"
)

func TestLoad_PlainText(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "contract.txt")
	require.NoError(t, os.WriteFile(path, []byte("Payment due TBD."), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, normalize.FormatPlain, doc.Format())
	assert.Equal(t, "Payment due TBD.", doc.PlainText())
	assert.Equal(t, doc.Raw(), doc.PlainText())
}

func TestLoad_HTMLStripped(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "contract.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>Payment due <b>TBD</b>.</p>"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, normalize.FormatHTML, doc.Format())
	assert.Equal(t, "Payment due TBD.", doc.PlainText())
	assert.Contains(t, doc.Raw(), "<p>")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, Write(path, "merged text"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "merged text", string(data))
}
