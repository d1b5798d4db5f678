package content

import (
	"strings"
	"time"
)

// ElementKind discriminates chapter elements.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
)

// Element is one display-ready unit in a chapter's stream: a paragraph of
// text or an inline image reference. Extractors emit raw text elements in
// document order; normalization replaces each raw text element with its
// reflowed paragraphs in place, leaving images where they were.
type Element struct {
	Kind ElementKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	Src  string      `json:"src,omitempty"`
	Alt  string      `json:"alt,omitempty"`
}

func TextElement(text string) Element {
	return Element{Kind: KindText, Text: text}
}

func ImageElement(src, alt string) Element {
	return Element{Kind: KindImage, Src: src, Alt: alt}
}

// Chapter is an ordered element stream. PageOriented marks text extracted
// per page (PDF), which is expected to carry injected page-number noise.
type Chapter struct {
	Index        int       `json:"index"`
	Title        string    `json:"title,omitempty"`
	PageOriented bool      `json:"page_oriented,omitempty"`
	Elements     []Element `json:"elements"`
	Segments     []Segment `json:"segments,omitempty"`
	Summary      string    `json:"summary,omitempty"`
}

// Segment is one display page: a contiguous half-open element range
// [Start, End) sized for a single screenful. Reading positions reference
// segment indices, so segmentation must stay deterministic per chapter.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Runes int `json:"runes"`
}

// PlainText joins the chapter's text elements with blank lines, skipping
// images. Used for summarization and hashing.
func (c *Chapter) PlainText() string {
	var parts []string
	for _, el := range c.Elements {
		if el.Kind == KindText && el.Text != "" {
			parts = append(parts, el.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Book is a library entry.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author,omitempty"`
	Source       string    `json:"source"`
	Format       string    `json:"format"`
	ContentHash  string    `json:"content_hash,omitempty"`
	ChapterCount int       `json:"chapter_count"`
	AddedAt      time.Time `json:"added_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Position is a reader's place in a book. The zero value means "start of the
// book" and is what unread books report.
type Position struct {
	Chapter   int       `json:"chapter"`
	Segment   int       `json:"segment"`
	Element   int       `json:"element"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
