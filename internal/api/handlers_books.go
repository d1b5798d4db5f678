package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/davidriles/folio/internal/content"
	"github.com/davidriles/folio/internal/extractor"
	"github.com/davidriles/folio/internal/library"
	"github.com/davidriles/folio/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleAddBook accepts either a multipart file upload or a JSON body with a
// source URL, and queues an ingestion job.
func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		s.addBookFromUpload(w, r)
		return
	}
	s.addBookFromURL(w, r)
}

func (s *Server) addBookFromUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with extra headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !extractor.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := newJob()
	job.Filename = filename
	job.Title = r.FormValue("title")
	job.SetFileData(data)

	s.submitJob(w, job)
}

type addBookRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

func (s *Server) addBookFromURL(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		jsonError(w, "url must be a valid http(s) URL", http.StatusBadRequest)
		return
	}

	job := newJob()
	job.SourceURL = req.URL
	job.Title = req.Title

	s.submitJob(w, job)
}

func newJob() *pipeline.Job {
	now := time.Now()
	return &pipeline.Job{
		ID:        pipeline.NewID(),
		BookID:    pipeline.NewID(),
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Server) submitJob(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"book_id":  job.BookID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.orchestrator.Store().ListBooks()
	if err != nil {
		jsonError(w, "failed to list books: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if books == nil {
		books = []*content.Book{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"books": books})
}

// chapterEntry is the per-chapter line in a book's table of contents.
type chapterEntry struct {
	Index    int    `json:"index"`
	Title    string `json:"title,omitempty"`
	Segments int    `json:"segments"`
	Summary  string `json:"summary,omitempty"`
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID := library.SanitizeID(chi.URLParam(r, "bookID"))
	store := s.orchestrator.Store()
	book, err := store.GetBook(bookID)
	if errors.Is(err, library.ErrNotFound) {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load book: "+err.Error(), http.StatusInternalServerError)
		return
	}

	toc := make([]chapterEntry, 0, book.ChapterCount)
	for i := 0; i < book.ChapterCount; i++ {
		ch, err := store.GetChapter(bookID, i)
		if err != nil {
			continue
		}
		toc = append(toc, chapterEntry{
			Index:    ch.Index,
			Title:    ch.Title,
			Segments: len(ch.Segments),
			Summary:  ch.Summary,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book":     book,
		"chapters": toc,
	})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := library.SanitizeID(chi.URLParam(r, "bookID"))
	err := s.orchestrator.Store().DeleteBook(bookID)
	if errors.Is(err, library.ErrNotFound) {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete book: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": bookID})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
