package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/davidriles/folio/internal/content"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown sources using goldmark. Headings split
// chapters; every other top-level block becomes one raw text element.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, name string) ([]*content.Chapter, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	current := &content.Chapter{Title: baseTitle(name)}
	chapters := []*content.Chapter{current}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			title := string(h.Text(src))
			if title != "" {
				current = &content.Chapter{Title: title}
				chapters = append(chapters, current)
			}
			continue
		}
		if t := extractText(n, src); t != "" {
			current.Elements = append(current.Elements, content.TextElement(t))
		}
	}

	return reindex(chapters), nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
