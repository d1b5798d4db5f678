package pipeline

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusFetching    JobStatus = "fetching"
	StatusExtracting  JobStatus = "extracting"
	StatusNormalizing JobStatus = "normalizing"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
	StatusDupSkipped  JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single book ingestion.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	BookID string `json:"book_id"`

	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	SourceURL string    `json:"source_url,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	Title     string    `json:"title,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalChapters      int      `json:"total_chapters"`
	ChaptersNormalized int      `json:"chapters_normalized"`
	ChaptersSummarized int      `json:"chapters_summarized"`
	Errors             []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrChaptersNormalized atomically increments the normalized counter.
func (j *Job) IncrChaptersNormalized() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChaptersNormalized++
	j.UpdatedAt = time.Now()
}

// IncrChaptersSummarized atomically increments the summarized counter.
func (j *Job) IncrChaptersSummarized() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChaptersSummarized++
	j.UpdatedAt = time.Now()
}

// SetTotalChapters records total chapter count.
func (j *Job) SetTotalChapters(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChapters = n
	j.UpdatedAt = time.Now()
}

// SetTitle records the resolved book title.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.UpdatedAt = time.Now()
}

// SetContentHash records the source content hash.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	BookID    string    `json:"book_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	SourceURL string    `json:"source_url,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	Title     string    `json:"title,omitempty"`
	Progress  Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		BookID:    j.BookID,
		Status:    j.Status,
		Phase:     j.Phase,
		SourceURL: j.SourceURL,
		Filename:  j.Filename,
		Title:     j.Title,
		Progress: Progress{
			TotalChapters:      j.Progress.TotalChapters,
			ChaptersNormalized: j.Progress.ChaptersNormalized,
			ChaptersSummarized: j.Progress.ChaptersSummarized,
			Errors:             errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// NewID returns a random 128-bit hex identifier for jobs and books.
func NewID() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
