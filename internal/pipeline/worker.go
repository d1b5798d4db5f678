package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/davidriles/folio/internal/content"
	"github.com/davidriles/folio/internal/extractor"
	"github.com/davidriles/folio/internal/fetch"
	"github.com/davidriles/folio/internal/library"
	"github.com/davidriles/folio/internal/normalize"
	"github.com/davidriles/folio/internal/paginate"
	"github.com/davidriles/folio/internal/summarize"
)

// Worker processes a single book ingestion job.
type Worker struct {
	fetcher    *fetch.Fetcher
	store      library.Store
	summarizer *summarize.Client
	log        *slog.Logger
	pageCfg    paginate.Config

	maxConcurrentSummarize int
	pdfFallback            bool
}

func NewWorker(fetcher *fetch.Fetcher, store library.Store, summarizer *summarize.Client, log *slog.Logger, pageCfg paginate.Config, maxSummarize int) *Worker {
	if maxSummarize <= 0 {
		maxSummarize = 3
	}
	return &Worker{
		fetcher:                fetcher,
		store:                  store,
		summarizer:             summarizer,
		log:                    log,
		pageCfg:                pageCfg,
		maxConcurrentSummarize: maxSummarize,
	}
}

// SetPDFFallback enables shelling out to pdftotext when the native PDF
// reader fails.
func (w *Worker) SetPDFFallback(enabled bool) {
	w.pdfFallback = enabled
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "book_id", job.BookID)

	// Phase 1: Obtain source bytes.
	data := job.FileData()
	sourceName := job.Filename
	if len(data) == 0 && job.SourceURL != "" {
		job.SetStatus(StatusFetching, "fetching source")
		res, err := w.fetcher.Fetch(ctx, job.SourceURL)
		if err != nil {
			log.Error("fetch failed", "url", job.SourceURL, "error", err)
			job.AddError(fmt.Sprintf("fetch: %s", err))
			job.SetStatus(StatusFailed, "fetching")
			return
		}
		data = res.Body
		job.SetFileData(data)
		if job.Title == "" && res.Title != "" {
			job.SetTitle(res.Title)
		}
		if sourceName == "" {
			sourceName = sourceNameFromURL(res.FinalURL, res.ContentType)
		}
	}
	if len(data) == 0 {
		job.AddError("no source data")
		job.SetStatus(StatusFailed, "fetching")
		return
	}

	// Phase 1.5: Dedup check on source bytes.
	job.SetContentHash(ContentHashHex(data))
	if dupID, dup := w.checkDuplicate(job.ContentHash); dup {
		log.Info("duplicate source, skipping", "existing_book_id", dupID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Extract chapters.
	job.SetStatus(StatusExtracting, "extracting chapters")
	ext, err := extractor.ForFile(sourceName)
	if err != nil {
		log.Error("unsupported format", "name", sourceName, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	if pdfExt, ok := ext.(*extractor.PDFExtractor); ok {
		pdfExt.FallbackPdftotext = w.pdfFallback
	}
	chapters, err := ext.Extract(bytes.NewReader(data), sourceName)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	if len(chapters) == 0 {
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetTotalChapters(len(chapters))
	log.Info("extracted chapters", "chapters", len(chapters))

	if job.Title == "" && chapters[0].Title != "" {
		job.SetTitle(chapters[0].Title)
	}

	// Phase 3: Normalize and segment each chapter.
	job.SetStatus(StatusNormalizing, "reflowing text")
	for _, ch := range chapters {
		normalizeChapter(ch)
		paginate.SplitChapter(ch, w.pageCfg)
		job.IncrChaptersNormalized()
	}

	// Phase 4: Summarize chapters with bounded concurrency (optional).
	hadErrors := false
	if w.summarizer != nil {
		hadErrors = w.summarizeChapters(ctx, job, chapters, log)
	}

	// Phase 5: Store the book.
	job.SetStatus(StatusStoring, "storing book")
	now := time.Now().UTC()
	book := &content.Book{
		ID:          job.BookID,
		Title:       job.Title,
		Source:      sourceRef(job),
		Format:      formatFromName(sourceName),
		ContentHash: job.ContentHash,
		AddedAt:     now,
		UpdatedAt:   now,
	}
	if book.Title == "" {
		book.Title = sourceName
	}
	if err := w.store.SaveBook(book, chapters); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("ingest complete", "chapters", len(chapters), "partial", hadErrors)
}

// summarizeChapters fills Chapter.Summary with bounded concurrency and
// retries on transient API errors. Returns true if any chapter failed.
func (w *Worker) summarizeChapters(ctx context.Context, job *Job, chapters []*content.Chapter, log *slog.Logger) bool {
	type result struct {
		idx     int
		summary string
		err     error
	}
	results := make(chan result, len(chapters))
	sem := make(chan struct{}, w.maxConcurrentSummarize)

	for i, ch := range chapters {
		sem <- struct{}{}
		go func(i int, title, text string) {
			defer func() { <-sem }()
			var summary string
			var lastErr error
			for attempt := range MaxRetries {
				summary, lastErr = w.summarizer.SummarizeChapter(ctx, title, text)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable summarize error", "chapter", i, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- result{idx: i, err: ctx.Err()}
					return
				}
			}
			results <- result{idx: i, summary: summary, err: lastErr}
		}(i, ch.Title, ch.PlainText())
	}

	hadErrors := false
	for range chapters {
		r := <-results
		if r.err != nil {
			log.Error("summarize failed", "chapter", r.idx, "error", r.err)
			job.AddError(fmt.Sprintf("summarize chapter %d: %s", r.idx, r.err))
			hadErrors = true
			continue
		}
		chapters[r.idx].Summary = r.summary
		job.IncrChaptersSummarized()
	}
	return hadErrors
}

// normalizeChapter runs the noise filter and reflow engine over every text
// element, replacing each with its reflowed paragraphs in place. Images keep
// their position in the stream.
func normalizeChapter(ch *content.Chapter) {
	out := make([]content.Element, 0, len(ch.Elements))
	for _, el := range ch.Elements {
		if el.Kind != content.KindText {
			out = append(out, el)
			continue
		}
		text := normalize.StripPagePrefixes(el.Text)
		text = normalize.StripPageNumbers(text, ch.PageOriented)
		text = normalize.Paragraphs(text)
		for _, para := range strings.Split(text, "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				out = append(out, content.TextElement(para))
			}
		}
	}
	ch.Elements = out
}

// checkDuplicate reports whether a book with the same content hash already
// exists in the library.
func (w *Worker) checkDuplicate(hash string) (string, bool) {
	if hash == "" {
		return "", false
	}
	books, err := w.store.ListBooks()
	if err != nil {
		return "", false
	}
	for _, b := range books {
		if b.ContentHash == hash {
			return b.ID, true
		}
	}
	return "", false
}

func sourceRef(job *Job) string {
	if job.SourceURL != "" {
		return job.SourceURL
	}
	return "upload:" + job.Filename
}

// sourceNameFromURL derives a parseable filename from a fetched URL. URLs
// with no recognizable extension are treated as HTML pages.
func sourceNameFromURL(rawURL, contentType string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		base := path.Base(parsed.Path)
		if extractor.IsSupportedExtension(base) {
			return base
		}
	}
	switch {
	case strings.Contains(contentType, "pdf"):
		return "source.pdf"
	case strings.Contains(contentType, "epub"):
		return "source.epub"
	case strings.Contains(contentType, "markdown"):
		return "source.md"
	default:
		return "source.html"
	}
}

func formatFromName(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return "html"
	}
	return ext
}
