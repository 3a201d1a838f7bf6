// File: internal/document/document.go
// Description: Host document accessor. Loads the document once, exposes its
// plain-text form for searching and context extraction, and writes the merged
// result back out. The engine itself never mutates the loaded document.

package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xkilldash9x/docmend/internal/normalize"
)

// Document is an immutable view of one host document for the duration of a
// fix session.
type Document struct {
	path   string
	format normalize.Format
	raw    string
	plain  string
}

// Load reads the file at path, detects its markup format from the extension,
// and pre-computes the plain-text form.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: reading %s: %w", path, err)
	}
	return New(path, string(raw))
}

// New builds a Document from in-memory content, detecting the format from the
// path's extension.
func New(path, raw string) (*Document, error) {
	format := normalize.FormatForExtension(filepath.Ext(path))
	plain, err := normalize.PlainText(raw, format)
	if err != nil {
		return nil, fmt.Errorf("document: normalizing %s: %w", path, err)
	}
	return &Document{
		path:   path,
		format: format,
		raw:    raw,
		plain:  plain,
	}, nil
}

// Path returns the source path the document was loaded from.
func (d *Document) Path() string { return d.path }

// Format returns the detected markup format.
func (d *Document) Format() normalize.Format { return d.format }

// Raw returns the document exactly as loaded.
func (d *Document) Raw() string { return d.raw }

// PlainText returns the markup-stripped form used for searching, context
// extraction, and merging.
func (d *Document) PlainText() string { return d.plain }

// Write commits a new text value to path on behalf of the host. The loaded
// document is left untouched.
func Write(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("document: writing %s: %w", path, err)
	}
	return nil
}
