package extractor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davidriles/folio/internal/content"
	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. Heading-styled paragraphs split
// chapters; body paragraphs become raw text elements.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(r io.Reader, name string) ([]*content.Chapter, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "folio-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	current := &content.Chapter{Title: baseTitle(name)}
	chapters := []*content.Chapter{current}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if docxHeadingLevel(para) > 0 {
			current = &content.Chapter{Title: text}
			chapters = append(chapters, current)
			continue
		}
		current.Elements = append(current.Elements, content.TextElement(text))
	}

	result := reindex(chapters)
	if len(result) == 0 {
		return nil, fmt.Errorf("no extractable content in %s", name)
	}
	return result, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	for level := 1; level <= 6; level++ {
		if style == fmt.Sprintf("heading%d", level) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
