package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/davidriles/folio/internal/config"
	"github.com/davidriles/folio/internal/fetch"
	"github.com/davidriles/folio/internal/library"
	"github.com/davidriles/folio/internal/paginate"
	"github.com/davidriles/folio/internal/summarize"
)

// Orchestrator manages the book ingestion pipeline.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	fetcher    *fetch.Fetcher
	store      library.Store
	summarizer *summarize.Client
	log        *slog.Logger
	cfg        config.Config
	pageCfg    paginate.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. The summarizer may be nil, in which
// case chapters are stored without summaries.
func NewOrchestrator(cfg config.Config, fetcher *fetch.Fetcher, store library.Store, summarizer *summarize.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		fetcher:    fetcher,
		store:      store,
		summarizer: summarizer,
		log:        log,
		cfg:        cfg,
		pageCfg: paginate.Config{
			SegmentRunes: cfg.SegmentRunes,
			ImageRunes:   cfg.ImageRunes,
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.fetcher, o.store, o.summarizer, o.log, o.pageCfg, o.cfg.MaxConcurrentSummarize)
			w.SetPDFFallback(o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the library store for direct use by API handlers.
func (o *Orchestrator) Store() library.Store {
	return o.store
}
