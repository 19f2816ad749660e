package usage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Recorder is a fire-and-forget front for a Store.
//
// Record enqueues onto a buffered channel and returns immediately; a
// background worker persists entries. When the buffer is full the record
// is dropped and counted rather than blocking the request pipeline, and
// store failures are logged and swallowed. Usage logging must never abort
// or slow down a request.
type Recorder struct {
	store   Store
	entries chan *Record
	dropped atomic.Int64
	logger  *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRecorder creates a Recorder in front of store with the given buffer
// size (default 1024) and starts its worker goroutine.
func NewRecorder(store Store, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1024
	}

	r := &Recorder{
		store:   store,
		entries: make(chan *Record, bufferSize),
		logger:  slog.Default().With("component", "usage.recorder"),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues a usage record. It fills in the record ID and timestamp
// when unset, never blocks, and never returns an error: persistence
// failures are intentionally invisible to the request path.
func (r *Recorder) Record(rec *Record) {
	if rec == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.RequestType == "" {
		rec.RequestType = "text_generation"
	}

	select {
	case r.entries <- rec:
	default:
		dropped := r.dropped.Add(1)
		r.logger.Warn("usage record dropped, buffer full",
			"user_id", rec.UserID,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of records dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the worker after draining buffered records.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh
}

// run is the worker loop persisting queued records.
func (r *Recorder) run() {
	defer close(r.doneCh)

	for {
		select {
		case rec := <-r.entries:
			r.persist(rec)
		case <-r.stopCh:
			// Drain what is already buffered, then exit.
			for {
				select {
				case rec := <-r.entries:
					r.persist(rec)
				default:
					return
				}
			}
		}
	}
}

// persist writes one record, logging and swallowing any failure.
func (r *Recorder) persist(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.Save(ctx, rec); err != nil {
		r.logger.Error("failed to persist usage record",
			"user_id", rec.UserID,
			"error", err,
		)
	}
}
