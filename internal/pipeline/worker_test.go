package pipeline

import (
	"context"
	"log/slog"
	"testing"

	"github.com/davidriles/folio/internal/content"
	"github.com/davidriles/folio/internal/library"
	"github.com/davidriles/folio/internal/paginate"
)

func TestNormalizeChapter_ReflowsAndSplits(t *testing.T) {
	ch := &content.Chapter{
		Elements: []content.Element{
			content.TextElement("End of one.\nNext starts here."),
			content.ImageElement("map.png", ""),
			content.TextElement("This is inter-\nesting prose."),
		},
	}
	normalizeChapter(ch)

	if len(ch.Elements) != 4 {
		t.Fatalf("expected 4 elements, got %d: %+v", len(ch.Elements), ch.Elements)
	}
	if ch.Elements[0].Text != "End of one." || ch.Elements[1].Text != "Next starts here." {
		t.Errorf("expected sentence-end break to split paragraphs, got %+v", ch.Elements[:2])
	}
	if ch.Elements[2].Kind != content.KindImage {
		t.Errorf("expected image to keep its position, got %+v", ch.Elements[2])
	}
	if ch.Elements[3].Text != "This is interesting prose." {
		t.Errorf("expected hyphen rejoin, got %q", ch.Elements[3].Text)
	}
}

func TestNormalizeChapter_PageOrientedStripsNumbers(t *testing.T) {
	ch := &content.Chapter{
		PageOriented: true,
		Elements: []content.Element{
			content.TextElement("The gate closed.\n314\nNobody spoke."),
		},
	}
	normalizeChapter(ch)

	if len(ch.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d: %+v", len(ch.Elements), ch.Elements)
	}
	if ch.Elements[0].Text != "The gate closed." || ch.Elements[1].Text != "Nobody spoke." {
		t.Errorf("expected page number removed, got %+v", ch.Elements)
	}
}

func TestNormalizeChapter_NonPageOrientedKeepsNumbers(t *testing.T) {
	ch := &content.Chapter{
		Elements: []content.Element{
			content.TextElement("He counted 314 sheep."),
		},
	}
	normalizeChapter(ch)

	if len(ch.Elements) != 1 || ch.Elements[0].Text != "He counted 314 sheep." {
		t.Errorf("expected text untouched, got %+v", ch.Elements)
	}
}

func TestWorker_ProcessUpload(t *testing.T) {
	store, err := library.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	w := NewWorker(nil, store, nil, slog.Default(), paginate.DefaultConfig(), 1)

	job := &Job{
		ID:       NewID(),
		BookID:   NewID(),
		Filename: "novel.txt",
		Status:   StatusQueued,
	}
	job.SetFileData([]byte("Chapter 1\n\nIt began\nat sea.\n\nChapter 2\n\nIt ended inland."))

	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", job.Status, job.Snapshot().Progress.Errors)
	}

	book, err := store.GetBook(job.BookID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if book.ChapterCount != 2 {
		t.Errorf("expected 2 chapters, got %d", book.ChapterCount)
	}
	if book.Format != "txt" {
		t.Errorf("expected format txt, got %q", book.Format)
	}

	ch, err := store.GetChapter(job.BookID, 0)
	if err != nil {
		t.Fatalf("GetChapter: %v", err)
	}
	if ch.Title != "Chapter 1" {
		t.Errorf("unexpected chapter title %q", ch.Title)
	}
	if len(ch.Elements) != 1 || ch.Elements[0].Text != "It began at sea." {
		t.Errorf("expected reflowed paragraph, got %+v", ch.Elements)
	}
	if len(ch.Segments) == 0 {
		t.Errorf("expected chapter to be segmented")
	}
}

func TestWorker_ProcessDuplicateSkipped(t *testing.T) {
	store, err := library.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	w := NewWorker(nil, store, nil, slog.Default(), paginate.DefaultConfig(), 1)

	data := []byte("Chapter 1\n\nSame text both times.")

	first := &Job{ID: NewID(), BookID: NewID(), Filename: "a.txt"}
	first.SetFileData(data)
	w.Process(context.Background(), first)
	if first.Status != StatusCompleted {
		t.Fatalf("first ingest: expected completed, got %q", first.Status)
	}

	second := &Job{ID: NewID(), BookID: NewID(), Filename: "b.txt"}
	second.SetFileData(data)
	w.Process(context.Background(), second)
	if second.Status != StatusDupSkipped {
		t.Errorf("expected duplicate_skipped, got %q", second.Status)
	}
}

func TestWorker_ProcessUnsupportedFormat(t *testing.T) {
	store, err := library.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	w := NewWorker(nil, store, nil, slog.Default(), paginate.DefaultConfig(), 1)

	job := &Job{ID: NewID(), BookID: NewID(), Filename: "data.csv"}
	job.SetFileData([]byte("a,b,c"))
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Errorf("expected failed, got %q", job.Status)
	}
}

func TestSourceNameFromURL(t *testing.T) {
	cases := []struct {
		url         string
		contentType string
		want        string
	}{
		{"https://example.com/books/novel.epub", "application/epub+zip", "novel.epub"},
		{"https://example.com/read/12345", "text/html; charset=utf-8", "source.html"},
		{"https://example.com/paper", "application/pdf", "source.pdf"},
	}
	for _, c := range cases {
		if got := sourceNameFromURL(c.url, c.contentType); got != c.want {
			t.Errorf("sourceNameFromURL(%q, %q) = %q, want %q", c.url, c.contentType, got, c.want)
		}
	}
}
