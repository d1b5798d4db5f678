package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/davidriles/folio/internal/content"
	"github.com/davidriles/folio/internal/library"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	bookID := library.SanitizeID(chi.URLParam(r, "bookID"))
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		jsonError(w, "index must be a non-negative integer", http.StatusBadRequest)
		return
	}

	ch, err := s.orchestrator.Store().GetChapter(bookID, index)
	if errors.Is(err, library.ErrNotFound) {
		jsonError(w, "chapter not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load chapter: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ch)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	bookID := library.SanitizeID(chi.URLParam(r, "bookID"))
	pos, err := s.orchestrator.Store().GetPosition(bookID)
	if errors.Is(err, library.ErrNotFound) {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load position: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pos)
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	bookID := library.SanitizeID(chi.URLParam(r, "bookID"))

	var pos content.Position
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&pos); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if pos.Chapter < 0 || pos.Segment < 0 || pos.Element < 0 {
		jsonError(w, "position fields must be non-negative", http.StatusBadRequest)
		return
	}
	pos.UpdatedAt = time.Now().UTC()

	err := s.orchestrator.Store().SetPosition(bookID, &pos)
	if errors.Is(err, library.ErrNotFound) {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to save position: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pos)
}
