package ratelimit

import (
	"context"
	"sync"
	"time"

	"skyrate/internal/quote"
	"skyrate/internal/source"
)

// MinInterval wraps a source client and enforces a minimum time between
// calls. Concurrent calls wait until the interval has elapsed since the
// last call, or return early if the context is canceled.
type MinInterval struct {
	C        source.Client
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Name() string { return m.C.Name() }

func (m *MinInterval) Category() quote.Source { return m.C.Category() }

func (m *MinInterval) Quote(ctx context.Context, req quote.Request) (quote.Quote, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return quote.Quote{}, ctx.Err()
			case <-t.C:
			}
		}
	}
	q, err := m.C.Quote(ctx, req)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return q, err
}
