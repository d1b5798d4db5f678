package extractor

import (
	"strings"
	"testing"

	"github.com/davidriles/folio/internal/content"
)

func TestTextExtractor_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	e := &TextExtractor{}
	chapters, err := e.Extract(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(chapters))
	}
	ch := chapters[0]
	if ch.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", ch.Title)
	}
	if len(ch.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(ch.Elements))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if ch.Elements[i].Text != w {
			t.Errorf("element[%d]: expected %q, got %q", i, w, ch.Elements[i].Text)
		}
	}
}

func TestTextExtractor_ChapterHeadings(t *testing.T) {
	input := "Chapter 1\n\nIt began at sea.\n\nChapter 2\n\nIt ended inland."
	e := &TextExtractor{}
	chapters, err := e.Extract(strings.NewReader(input), "novel.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Chapter 1" || chapters[1].Title != "Chapter 2" {
		t.Errorf("unexpected titles: %q, %q", chapters[0].Title, chapters[1].Title)
	}
	if chapters[0].Index != 0 || chapters[1].Index != 1 {
		t.Errorf("unexpected indices: %d, %d", chapters[0].Index, chapters[1].Index)
	}
}

func TestTextExtractor_ShoutedHeading(t *testing.T) {
	input := "Some opening text here.\n\nTHE RECKONING\n\nAnd then it happened."
	e := &TextExtractor{}
	chapters, err := e.Extract(strings.NewReader(input), "novel.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[1].Title != "THE RECKONING" {
		t.Errorf("expected shouted heading as chapter title, got %q", chapters[1].Title)
	}
}

func TestTextExtractor_EmptyInput(t *testing.T) {
	e := &TextExtractor{}
	chapters, err := e.Extract(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 0 {
		t.Errorf("expected no chapters for empty input, got %d", len(chapters))
	}
}

func TestTextExtractor_WhitespaceOnlyLinesBreakParagraphs(t *testing.T) {
	input := "Para one.\n   \nPara two."
	e := &TextExtractor{}
	chapters, err := e.Extract(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 1 || len(chapters[0].Elements) != 2 {
		t.Fatalf("expected 2 elements in 1 chapter, got %+v", chapters)
	}
}

func TestForFile(t *testing.T) {
	cases := []struct {
		filename string
		ok       bool
	}{
		{"book.epub", true},
		{"story.PDF", true},
		{"page.html", true},
		{"novel.txt", true},
		{"notes.md", true},
		{"draft.docx", true},
		{"data.csv", false},
		{"archive.zip", false},
	}
	for _, c := range cases {
		_, err := ForFile(c.filename)
		if c.ok && err != nil {
			t.Errorf("ForFile(%q): unexpected error %v", c.filename, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ForFile(%q): expected error", c.filename)
		}
		if got := IsSupportedExtension(c.filename); got != c.ok {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", c.filename, got, c.ok)
		}
	}
}

func chapterTexts(ch *content.Chapter) []string {
	var out []string
	for _, el := range ch.Elements {
		if el.Kind == content.KindText {
			out = append(out, el.Text)
		}
	}
	return out
}
