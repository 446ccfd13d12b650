// Package cleanup removes records left dangling after an entity is deleted.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vidshare/backend/internal/metrics"
	"github.com/vidshare/backend/internal/repositories"
)

// Kind names the deleted entity a job cleans up after.
type Kind string

const (
	KindVideo   Kind = "video"
	KindComment Kind = "comment"
	KindTweet   Kind = "tweet"
)

// Job asks the janitor to purge the dependents of a deleted entity.
type Job struct {
	Kind Kind
	ID   string
}

// Config controls the concurrency characteristics of the janitor.
type Config struct {
	QueueSize  int
	Workers    int
	JobTimeout time.Duration
}

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("cleanup janitor closed")

// Janitor purges orphaned likes, comments, playlist entries and watch
// history in the background.
type Janitor struct {
	purger  repositories.PurgeRepository
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewJanitor starts cfg.Workers goroutines draining the job queue.
func NewJanitor(purger repositories.PurgeRepository, cfg Config, logger *slog.Logger) *Janitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		purger:  purger,
		logger:  logger,
		timeout: cfg.JobTimeout,
		jobs:    make(chan Job, cfg.QueueSize),
	}

	j.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go j.worker()
	}

	return j
}

// Enqueue schedules job. It blocks while the queue is full.
func (j *Janitor) Enqueue(ctx context.Context, job Job) error {
	switch job.Kind {
	case KindVideo, KindComment, KindTweet:
	default:
		return fmt.Errorf("cleanup: unknown job kind %q", job.Kind)
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.jobs <- job:
		return nil
	}
}

// Shutdown stops accepting jobs and waits for the queue to drain.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.jobs)
	}
	j.mu.Unlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()
	for job := range j.jobs {
		j.handleJob(job)
	}
}

func (j *Janitor) handleJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	var err error
	switch job.Kind {
	case KindVideo:
		err = j.purger.PurgeVideo(ctx, job.ID)
	case KindComment:
		err = j.purger.PurgeComment(ctx, job.ID)
	case KindTweet:
		err = j.purger.PurgeTweet(ctx, job.ID)
	}

	if err != nil {
		metrics.RecordCleanup(string(job.Kind), "error")
		j.logger.Error("cleanup job failed", "kind", job.Kind, "id", job.ID, "error", err)
		return
	}
	metrics.RecordCleanup(string(job.Kind), "success")
	j.logger.Debug("cleanup job completed", "kind", job.Kind, "id", job.ID)
}
