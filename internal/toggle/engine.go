// Package toggle flips like and subscription edges between present and absent.
package toggle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/metrics"
)

// Kind identifies the edge table a toggle operates on.
type Kind int

const (
	VideoLike Kind = iota + 1
	CommentLike
	TweetLike
	ChannelSubscription
)

func (k Kind) String() string {
	switch k {
	case VideoLike:
		return "video_like"
	case CommentLike:
		return "comment_like"
	case TweetLike:
		return "tweet_like"
	case ChannelSubscription:
		return "channel_subscription"
	default:
		return "unknown"
	}
}

// Valid reports whether k names a known edge kind.
func (k Kind) Valid() bool {
	return k >= VideoLike && k <= ChannelSubscription
}

// Key identifies an edge: the subject (liker or subscriber) and its target.
type Key struct {
	Kind      Kind
	SubjectID string
	TargetID  string
}

// Outcome is the result of a single store attempt.
type Outcome int

const (
	// Contended means a concurrent writer created the edge between the delete
	// and the insert; nothing changed and the attempt should be repeated.
	Contended Outcome = iota
	Removed
	Inserted
)

func (o Outcome) String() string {
	switch o {
	case Removed:
		return "removed"
	case Inserted:
		return "inserted"
	default:
		return "contended"
	}
}

// EdgeStore performs one atomic delete-or-insert of an edge.
type EdgeStore interface {
	ToggleOnce(ctx context.Context, key Key) (Outcome, error)
}

// State is the edge presence after a toggle.
type State struct {
	Present bool `json:"present"`
}

// ErrContended is returned when every attempt observed a concurrent writer.
var ErrContended = errors.New("edge toggle contended")

const (
	defaultMaxAttempts = 5
	defaultBaseBackoff = 5 * time.Millisecond
	defaultMaxBackoff  = 200 * time.Millisecond
)

// Engine retries contended toggles with capped exponential backoff.
type Engine struct {
	store       EdgeStore
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// Option customises an Engine.
type Option func(*Engine)

// WithRetry overrides the attempt budget and backoff bounds.
func WithRetry(maxAttempts int, base, ceiling time.Duration) Option {
	return func(e *Engine) {
		if maxAttempts > 0 {
			e.maxAttempts = maxAttempts
		}
		if base > 0 {
			e.baseBackoff = base
		}
		if ceiling > 0 {
			e.maxBackoff = ceiling
		}
	}
}

// NewEngine constructs an Engine over store.
func NewEngine(store EdgeStore, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		maxBackoff:  defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Toggle removes the edge if present, otherwise creates it, and reports the
// resulting presence.
func (e *Engine) Toggle(ctx context.Context, key Key) (State, error) {
	if !key.Kind.Valid() {
		return State{}, fmt.Errorf("toggle: unknown edge kind %d", key.Kind)
	}
	if key.SubjectID == "" || key.TargetID == "" {
		return State{}, errors.New("toggle: subject and target are required")
	}

	ctx, span := logging.StartSpan(ctx, "toggle."+key.Kind.String())
	defer span.End()
	logger := logging.FromContext(ctx)

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * e.baseBackoff
			if backoff > e.maxBackoff {
				backoff = e.maxBackoff
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return State{}, ctx.Err()
			case <-timer.C:
			}
		}

		outcome, err := e.store.ToggleOnce(ctx, key)
		if err != nil {
			return State{}, fmt.Errorf("toggle %s: %w", key.Kind, err)
		}
		metrics.RecordToggle(key.Kind.String(), outcome.String())

		switch outcome {
		case Removed:
			return State{Present: false}, nil
		case Inserted:
			return State{Present: true}, nil
		}

		logger.Debug("edge toggle contended",
			slog.String("target_id", key.TargetID),
			slog.Int("attempt", attempt+1),
		)
	}

	return State{}, fmt.Errorf("toggle %s: %w after %d attempts", key.Kind, ErrContended, e.maxAttempts)
}
