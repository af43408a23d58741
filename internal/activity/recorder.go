// Package activity records user actions for the admin dashboard. Recording is
// fire-and-forget: callers never see a storage error.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

const writeTimeout = 5 * time.Second

// Event describes one user action. UserID and TargetID may be nil.
type Event struct {
	UserID   *uuid.UUID
	Action   string
	TargetID *uuid.UUID
	Details  map[string]interface{}
}

// Recorder accepts events without blocking and without returning errors.
type Recorder interface {
	Record(ev Event)
}

// Store persists a batch of entries.
type Store interface {
	CreateBatch(ctx context.Context, entries []models.ActivityLog) error
}

type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	Metrics       *metrics.Metrics
}

// AsyncRecorder buffers events and writes them from a single worker, in
// batches or on a timer, whichever comes first.
type AsyncRecorder struct {
	store     Store
	metrics   *metrics.Metrics
	entries   chan models.ActivityLog
	batchSize int
	interval  time.Duration
	now       func() time.Time

	// mu orders Record's send against Stop so nothing lands after the drain.
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

func NewAsyncRecorder(store Store, opts Options) *AsyncRecorder {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 2 * time.Second
	}
	r := &AsyncRecorder{
		store:     store,
		metrics:   opts.Metrics,
		entries:   make(chan models.ActivityLog, opts.BufferSize),
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		now:       time.Now,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *AsyncRecorder) Record(ev Event) {
	entry := models.ActivityLog{
		ID:        uuid.New(),
		UserID:    ev.UserID,
		Action:    ev.Action,
		TargetID:  ev.TargetID,
		Details:   encodeDetails(ev.Details),
		CreatedAt: r.now().UTC(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		slog.Warn("activity recorder stopped, dropping entry", "action", ev.Action)
		r.metrics.ActivityDropped()
		return
	}

	select {
	case r.entries <- entry:
	default:
		slog.Warn("activity buffer full, dropping entry", "action", ev.Action)
		r.metrics.ActivityDropped()
	}
}

// Stop flushes whatever is buffered and waits for the worker to exit.
func (r *AsyncRecorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.done)
		r.mu.Unlock()
	})
	<-r.stopped
}

func (r *AsyncRecorder) run() {
	defer close(r.stopped)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	batch := make([]models.ActivityLog, 0, r.batchSize)
	for {
		select {
		case entry := <-r.entries:
			batch = append(batch, entry)
			if len(batch) >= r.batchSize {
				batch = r.flush(batch)
			}
		case <-ticker.C:
			batch = r.flush(batch)
		case <-r.done:
			for {
				select {
				case entry := <-r.entries:
					batch = append(batch, entry)
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes batch and returns a fresh buffer. Store failures and panics are
// logged and counted here; nothing propagates to request handlers.
func (r *AsyncRecorder) flush(batch []models.ActivityLog) []models.ActivityLog {
	if len(batch) == 0 {
		return batch
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("activity log write panicked", "error", fmt.Sprint(rec), "count", len(batch))
			r.metrics.ActivityFailed(len(batch))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.store.CreateBatch(ctx, batch); err != nil {
		slog.Error("failed to write activity logs", "error", err, "count", len(batch))
		r.metrics.ActivityFailed(len(batch))
	} else {
		r.metrics.ActivityWritten(len(batch))
	}
	return make([]models.ActivityLog, 0, r.batchSize)
}

func encodeDetails(details map[string]interface{}) datatypes.JSON {
	if len(details) == 0 {
		return datatypes.JSON("{}")
	}
	b, err := json.Marshal(details)
	if err != nil {
		slog.Warn("activity details not serializable", "error", err)
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
