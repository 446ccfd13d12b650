package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type purgerStub struct {
	mu       sync.Mutex
	videos   []string
	comments []string
	tweets   []string
	err      error
	block    chan struct{}
}

func (p *purgerStub) wait() {
	if p.block != nil {
		<-p.block
	}
}

func (p *purgerStub) PurgeVideo(ctx context.Context, id string) error {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videos = append(p.videos, id)
	return p.err
}

func (p *purgerStub) PurgeComment(ctx context.Context, id string) error {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comments = append(p.comments, id)
	return p.err
}

func (p *purgerStub) PurgeTweet(ctx context.Context, id string) error {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tweets = append(p.tweets, id)
	return p.err
}

func (p *purgerStub) counts() (int, int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.videos), len(p.comments), len(p.tweets)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shutdown(t *testing.T, j *Janitor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := j.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestJanitorDispatchesByKind(t *testing.T) {
	purger := &purgerStub{}
	janitor := NewJanitor(purger, Config{QueueSize: 4, Workers: 2}, quietLogger())

	jobs := []Job{
		{Kind: KindVideo, ID: "v1"},
		{Kind: KindComment, ID: "c1"},
		{Kind: KindTweet, ID: "t1"},
		{Kind: KindVideo, ID: "v2"},
	}
	for _, job := range jobs {
		if err := janitor.Enqueue(context.Background(), job); err != nil {
			t.Fatalf("enqueue %+v: %v", job, err)
		}
	}

	shutdown(t, janitor)

	videos, comments, tweets := purger.counts()
	if videos != 2 || comments != 1 || tweets != 1 {
		t.Fatalf("unexpected purge counts: videos=%d comments=%d tweets=%d", videos, comments, tweets)
	}
}

func TestJanitorSurvivesFailingJobs(t *testing.T) {
	purger := &purgerStub{err: errors.New("database unavailable")}
	janitor := NewJanitor(purger, Config{QueueSize: 2, Workers: 1}, quietLogger())

	for _, id := range []string{"v1", "v2"} {
		if err := janitor.Enqueue(context.Background(), Job{Kind: KindVideo, ID: id}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	shutdown(t, janitor)

	if videos, _, _ := purger.counts(); videos != 2 {
		t.Fatalf("expected both jobs attempted, got %d", videos)
	}
}

func TestJanitorRejectsAfterShutdown(t *testing.T) {
	janitor := NewJanitor(&purgerStub{}, Config{}, quietLogger())
	shutdown(t, janitor)

	if err := janitor.Enqueue(context.Background(), Job{Kind: KindTweet, ID: "t1"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	shutdown(t, janitor)
}

func TestJanitorRejectsUnknownKind(t *testing.T) {
	janitor := NewJanitor(&purgerStub{}, Config{}, quietLogger())
	defer shutdown(t, janitor)

	if err := janitor.Enqueue(context.Background(), Job{Kind: "playlist", ID: "p1"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestJanitorEnqueueHonoursContextWhenFull(t *testing.T) {
	purger := &purgerStub{block: make(chan struct{})}
	janitor := NewJanitor(purger, Config{QueueSize: 1, Workers: 1}, quietLogger())

	// One job occupies the worker, one fills the queue.
	for _, id := range []string{"v1", "v2"} {
		if err := janitor.Enqueue(context.Background(), Job{Kind: KindVideo, ID: id}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	// The worker may not have picked up v1 yet, so keep enqueuing until the
	// queue is observed full.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = janitor.Enqueue(ctx, Job{Kind: KindVideo, ID: "extra"})
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(purger.block)
	shutdown(t, janitor)
}

func TestJanitorShutdownTimesOut(t *testing.T) {
	purger := &purgerStub{block: make(chan struct{})}
	janitor := NewJanitor(purger, Config{QueueSize: 1, Workers: 1}, quietLogger())
	if err := janitor.Enqueue(context.Background(), Job{Kind: KindComment, ID: "c1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := janitor.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(purger.block)
	shutdown(t, janitor)
}
