package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/davidriles/folio/internal/content"
)

// ErrNotFound is returned when a book or chapter does not exist.
var ErrNotFound = errors.New("not found")

// Store persists books, their normalized chapters, and reading positions.
type Store interface {
	SaveBook(book *content.Book, chapters []*content.Chapter) error
	GetBook(id string) (*content.Book, error)
	ListBooks() ([]*content.Book, error)
	DeleteBook(id string) error
	GetChapter(bookID string, index int) (*content.Chapter, error)
	GetPosition(bookID string) (*content.Position, error)
	SetPosition(bookID string, pos *content.Position) error
}

// FileStore keeps each book under its own directory:
//
//	<root>/books/<id>/book.json
//	<root>/books/<id>/chapters/<n>.json
//	<root>/books/<id>/position.json
type FileStore struct {
	root string
	mu   sync.RWMutex
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "books"), 0755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &FileStore{root: dir}, nil
}

func (s *FileStore) bookDir(id string) string {
	return filepath.Join(s.root, "books", id)
}

// SaveBook writes the book record and all its chapters. Chapter files are
// written before book.json so a visible book is always complete.
func (s *FileStore) SaveBook(book *content.Book, chapters []*content.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.bookDir(book.ID)
	if err := os.MkdirAll(filepath.Join(dir, "chapters"), 0755); err != nil {
		return fmt.Errorf("create book dir: %w", err)
	}

	for _, ch := range chapters {
		path := filepath.Join(dir, "chapters", strconv.Itoa(ch.Index)+".json")
		if err := writeJSON(path, ch); err != nil {
			return fmt.Errorf("write chapter %d: %w", ch.Index, err)
		}
	}

	book.ChapterCount = len(chapters)
	if err := writeJSON(filepath.Join(dir, "book.json"), book); err != nil {
		return fmt.Errorf("write book: %w", err)
	}
	return nil
}

// GetBook loads a book record by ID.
func (s *FileStore) GetBook(id string) (*content.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var book content.Book
	if err := readJSON(filepath.Join(s.bookDir(id), "book.json"), &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns all book records, newest first.
func (s *FileStore) ListBooks() ([]*content.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.root, "books"))
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	var books []*content.Book
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var book content.Book
		if err := readJSON(filepath.Join(s.bookDir(entry.Name()), "book.json"), &book); err != nil {
			// Skip partially written or deleted entries.
			continue
		}
		books = append(books, &book)
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].AddedAt.After(books[j].AddedAt)
	})
	return books, nil
}

// DeleteBook removes a book and everything under it.
func (s *FileStore) DeleteBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.bookDir(id)
	if _, err := os.Stat(filepath.Join(dir, "book.json")); err != nil {
		return ErrNotFound
	}
	return os.RemoveAll(dir)
}

// GetChapter loads one normalized chapter of a book.
func (s *FileStore) GetChapter(bookID string, index int) (*content.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ch content.Chapter
	path := filepath.Join(s.bookDir(bookID), "chapters", strconv.Itoa(index)+".json")
	if err := readJSON(path, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetPosition returns the saved reading position, or the zero position if
// the book has never been opened.
func (s *FileStore) GetPosition(bookID string) (*content.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(filepath.Join(s.bookDir(bookID), "book.json")); err != nil {
		return nil, ErrNotFound
	}

	var pos content.Position
	err := readJSON(filepath.Join(s.bookDir(bookID), "position.json"), &pos)
	if errors.Is(err, ErrNotFound) {
		return &content.Position{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// SetPosition saves the reading position for a book.
func (s *FileStore) SetPosition(bookID string, pos *content.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(filepath.Join(s.bookDir(bookID), "book.json")); err != nil {
		return ErrNotFound
	}
	return writeJSON(filepath.Join(s.bookDir(bookID), "position.json"), pos)
}

// writeJSON marshals v and writes it atomically via a temp file rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SanitizeID turns arbitrary input into a safe directory name component.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
