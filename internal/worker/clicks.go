// Package worker records clicks off the redirect hot path. Events flow
// through a buffered channel into a small pool of goroutines; the redirect
// response never waits on them.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coderedlink/coderedlink/internal/logger"
	"github.com/coderedlink/coderedlink/internal/model"
)

// ClickStore persists one click.
type ClickStore interface {
	RecordClick(ctx context.Context, click *model.Click) error
}

// Event is one visit to a link, captured at redirect time.
type Event struct {
	LinkID    string
	Time      time.Time
	IPAddress string
	UserAgent string
	Referer   string
}

// Recorder consumes click events and writes them to the store. Write
// failures are logged and swallowed; they never reach the visitor.
type Recorder struct {
	events chan Event
	store  ClickStore
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewRecorder creates a Recorder with the given channel buffer.
func NewRecorder(store ClickStore, log *logger.Logger, buffer int) *Recorder {
	return &Recorder{
		events: make(chan Event, buffer),
		store:  store,
		log:    log,
	}
}

// Start launches n recording goroutines.
func (r *Recorder) Start(n int) {
	for i := 0; i < n; i++ {
		r.wg.Add(1)
		go r.run()
	}
	r.log.Info("click recorder started", "workers", n, "buffer", cap(r.events))
}

// Enqueue hands off an event without blocking. It reports false when the
// buffer is full and the event was dropped.
func (r *Recorder) Enqueue(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	default:
		r.log.Warn("click buffer full, dropping event", "link_id", ev.LinkID)
		return false
	}
}

// Close stops accepting events and waits for the workers to drain the
// buffer. Call once, during shutdown.
func (r *Recorder) Close() {
	close(r.events)
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for ev := range r.events {
		click := &model.Click{
			ID:        uuid.NewString(),
			LinkID:    ev.LinkID,
			CreatedAt: ev.Time,
			IPAddress: ev.IPAddress,
			UserAgent: ev.UserAgent,
			Referer:   ev.Referer,
		}

		// The originating request may be long gone; use a fresh context.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.store.RecordClick(ctx, click); err != nil {
			r.log.Error("failed to record click",
				"link_id", ev.LinkID,
				"error", err.Error())
		}
		cancel()
	}
}
