// File: internal/normalize/normalize.go
// Description: Reduces structural markup to plain text before pattern search
// and context extraction. HTML goes through the x/net tokenizer, XML through
// etree; anything else is treated as already-plain text.

package normalize

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// Format identifies the markup family of a document.
type Format string

const (
	FormatPlain Format = "plain"
	FormatHTML  Format = "html"
	FormatXML   Format = "xml"
)

// FormatForExtension maps a lowercase file extension (with dot) to a Format.
// Unknown extensions fall back to plain text.
func FormatForExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".xml":
		return FormatXML
	default:
		return FormatPlain
	}
}

// PlainText strips the given markup format down to readable text. The result
// is whitespace-collapsed so occurrence counting is stable regardless of how
// the source formats its tags.
func PlainText(raw string, format Format) (string, error) {
	switch format {
	case FormatHTML:
		return stripHTML(raw), nil
	case FormatXML:
		return stripXML(raw)
	case FormatPlain, "":
		return raw, nil
	default:
		return "", fmt.Errorf("normalize: unsupported format %q", format)
	}
}

// stripHTML walks the token stream, keeping text nodes and skipping the
// contents of script and style elements entirely.
func stripHTML(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))

	var b strings.Builder
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedElement(string(name)) {
				skipDepth++
			} else if isBlockElement(string(name)) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedElement(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func isSkippedElement(name string) bool {
	return name == "script" || name == "style" || name == "noscript"
}

func isBlockElement(name string) bool {
	switch name {
	case "p", "div", "br", "li", "tr", "td", "th",
		"h1", "h2", "h3", "h4", "h5", "h6", "section", "article":
		return true
	}
	return false
}

// stripXML concatenates the text content of the element tree in document
// order.
func stripXML(raw string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return "", fmt.Errorf("normalize: parsing xml: %w", err)
	}

	var b strings.Builder
	root := doc.Root()
	if root == nil {
		return "", nil
	}
	collectText(root, &b)
	return collapseWhitespace(b.String()), nil
}

func collectText(el *etree.Element, b *strings.Builder) {
	for _, child := range el.Child {
		switch node := child.(type) {
		case *etree.CharData:
			b.WriteString(node.Data)
		case *etree.Element:
			b.WriteByte(' ')
			collectText(node, b)
		}
	}
}

// collapseWhitespace folds runs of whitespace into single spaces and trims
// the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
