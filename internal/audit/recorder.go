package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

// Recorder writes audit events on a background goroutine so request handling
// never waits on the database. When the queue is full events are dropped.
type Recorder struct {
	store   Store
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan *models.AuditEvent
	done   chan struct{}
}

// NewRecorder starts a recorder draining into store.
func NewRecorder(store Store, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	r := &Recorder{
		store:   store,
		timeout: defaultWriteTimeout,
		queue:   make(chan *models.AuditEvent, queueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Enqueue hands event to the writer. It reports false if the event was dropped.
func (r *Recorder) Enqueue(event *models.AuditEvent) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}

	select {
	case r.queue <- event:
		return true
	default:
		slog.Warn("audit queue full, dropping event",
			"method", event.Method,
			"path", event.Path,
			"request_id", event.RequestID,
		)
		return false
	}
}

// Close stops accepting events and waits until the queued ones are written or
// ctx expires.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for event := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.store.Record(ctx, event); err != nil {
			slog.Error("failed to record audit event",
				"error", err,
				"method", event.Method,
				"path", event.Path,
			)
		}
		cancel()
	}
}
