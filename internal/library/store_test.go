package library

import (
	"errors"
	"testing"
	"time"

	"github.com/davidriles/folio/internal/content"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func sampleBook(id string) (*content.Book, []*content.Chapter) {
	book := &content.Book{
		ID:      id,
		Title:   "The Night Tide",
		Format:  "epub",
		AddedAt: time.Now().UTC(),
	}
	chapters := []*content.Chapter{
		{Index: 0, Title: "One", Elements: []content.Element{content.TextElement("It began at sea.")}},
		{Index: 1, Title: "Two", Elements: []content.Element{content.TextElement("It ended inland.")}},
	}
	return book, chapters
}

func TestFileStore_SaveAndGetBook(t *testing.T) {
	s := testStore(t)
	book, chapters := sampleBook("b1")

	if err := s.SaveBook(book, chapters); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	got, err := s.GetBook("b1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "The Night Tide" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.ChapterCount != 2 {
		t.Errorf("expected chapter count 2, got %d", got.ChapterCount)
	}
}

func TestFileStore_GetBookNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetBook("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_GetChapter(t *testing.T) {
	s := testStore(t)
	book, chapters := sampleBook("b1")
	if err := s.SaveBook(book, chapters); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	ch, err := s.GetChapter("b1", 1)
	if err != nil {
		t.Fatalf("GetChapter: %v", err)
	}
	if ch.Title != "Two" {
		t.Errorf("unexpected title %q", ch.Title)
	}
	if _, err := s.GetChapter("b1", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing chapter, got %v", err)
	}
}

func TestFileStore_ListBooks(t *testing.T) {
	s := testStore(t)

	older, chs := sampleBook("older")
	older.AddedAt = time.Now().UTC().Add(-time.Hour)
	if err := s.SaveBook(older, chs); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	newer, chs2 := sampleBook("newer")
	if err := s.SaveBook(newer, chs2); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	books, err := s.ListBooks()
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].ID != "newer" || books[1].ID != "older" {
		t.Errorf("expected newest first, got %q then %q", books[0].ID, books[1].ID)
	}
}

func TestFileStore_DeleteBook(t *testing.T) {
	s := testStore(t)
	book, chapters := sampleBook("b1")
	if err := s.SaveBook(book, chapters); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	if err := s.DeleteBook("b1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, err := s.GetBook("b1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected book gone, got %v", err)
	}
	if err := s.DeleteBook("b1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestFileStore_PositionDefaultsToStart(t *testing.T) {
	s := testStore(t)
	book, chapters := sampleBook("b1")
	if err := s.SaveBook(book, chapters); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	pos, err := s.GetPosition("b1")
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if pos.Chapter != 0 || pos.Segment != 0 || pos.Element != 0 {
		t.Errorf("expected zero position for unread book, got %+v", pos)
	}
}

func TestFileStore_SetAndGetPosition(t *testing.T) {
	s := testStore(t)
	book, chapters := sampleBook("b1")
	if err := s.SaveBook(book, chapters); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	want := &content.Position{Chapter: 1, Segment: 2, Element: 3, UpdatedAt: time.Now().UTC()}
	if err := s.SetPosition("b1", want); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	got, err := s.GetPosition("b1")
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if got.Chapter != 1 || got.Segment != 2 || got.Element != 3 {
		t.Errorf("unexpected position %+v", got)
	}
}

func TestFileStore_PositionForMissingBook(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetPosition("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetPosition("missing", &content.Position{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc-123_X", "abc-123_X"},
		{"../../etc/passwd", "etcpasswd"},
		{"a b/c", "abc"},
	}
	for _, c := range cases {
		if got := SanitizeID(c.in); got != c.want {
			t.Errorf("SanitizeID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
