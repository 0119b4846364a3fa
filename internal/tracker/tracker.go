// Package tracker watches order status changes with a cancellable
// periodic poll. Every fetch carries a monotonically increasing
// generation; a response is applied only if no newer response has landed
// first, so a stale fetch arriving late can never overwrite fresher
// state ("last response wins").
package tracker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// StatusChange is one observed order status transition.
type StatusChange struct {
	OrderID     uuid.UUID
	OrderNumber string
	Status      string
	UpdatedAt   time.Time
}

// Fetcher lists the status changes that happened after a watermark.
// Satisfied by *database.Queries.
type Fetcher interface {
	ListOrderStatusChangesSince(ctx context.Context, since time.Time) ([]StatusChange, error)
}

// Tracker polls a Fetcher and forwards applied changes to publish.
type Tracker struct {
	fetcher  Fetcher
	publish  func(StatusChange)
	interval time.Duration

	gen atomic.Uint64 // generations issued to fetches

	mu      sync.Mutex
	applied uint64    // newest generation whose response was applied
	since   time.Time // watermark of the newest change seen
}

// New creates a Tracker. publish is called once per applied change, in
// the order the backing query returned them.
func New(fetcher Fetcher, publish func(StatusChange), interval time.Duration) *Tracker {
	return &Tracker{
		fetcher:  fetcher,
		publish:  publish,
		interval: interval,
		since:    time.Now(),
	}
}

// Run polls until ctx is cancelled. Each tick issues its fetch in its own
// goroutine so one slow response cannot stall the loop; the generation
// check in apply discards whichever responses arrive out of order.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go t.Poll(ctx)
		}
	}
}

// Poll performs a single fetch/apply cycle.
func (t *Tracker) Poll(ctx context.Context) {
	gen := t.gen.Add(1)

	t.mu.Lock()
	since := t.since
	t.mu.Unlock()

	changes, err := t.fetcher.ListOrderStatusChangesSince(ctx, since)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("ERROR: poll order status: %v", err)
		}
		return
	}

	t.apply(gen, changes)
}

// apply publishes the changes of a fetch unless a newer fetch already
// landed. Reports whether the response was applied.
func (t *Tracker) apply(gen uint64, changes []StatusChange) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen <= t.applied {
		return false
	}
	t.applied = gen

	for _, ch := range changes {
		if ch.UpdatedAt.After(t.since) {
			t.since = ch.UpdatedAt
		}
		t.publish(ch)
	}
	return true
}
