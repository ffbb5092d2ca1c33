package cache

import (
	"context"
	"sync"
	"time"

	"skyrate/internal/pricing"
	"skyrate/internal/quote"
	"skyrate/internal/source"
)

// entry stores the cached quote for a single route with expiry.
type entry struct {
	expiresAt time.Time
	q         quote.Quote
}

// Client caches quotes per route for a TTL, sparing slow provider
// endpoints from repeated identical lookups. Cached quotes keep their
// original validUntil, so an entry that outlives its quote's validity is
// still filtered out downstream by the ranker.
type Client struct {
	C         source.Client
	TTL       time.Duration
	MaxRoutes int

	mu    sync.RWMutex
	items map[string]entry // key: route
}

func (c *Client) Name() string { return c.C.Name() }

func (c *Client) Category() quote.Source { return c.C.Category() }

// Quote returns a cached quote for the request's route when valid. The
// cache key ignores weight and volume: rates vary per route, totals are
// recomputed from the cached per-kg rate.
func (c *Client) Quote(ctx context.Context, req quote.Request) (quote.Quote, error) {
	if c.TTL <= 0 {
		return c.C.Quote(ctx, req)
	}

	route := req.Route()
	now := time.Now()

	c.mu.RLock()
	e, ok := c.items[route]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return c.retotal(e.q, req), nil
	}

	fresh, err := c.C.Quote(ctx, req)
	if err != nil {
		// Serve a stale-but-unexpired entry rather than failing outright.
		if ok && e.q.ValidUntil.After(now) {
			return c.retotal(e.q, req), nil
		}
		return quote.Quote{}, err
	}

	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[route] = entry{expiresAt: now.Add(c.TTL), q: fresh}
	if c.MaxRoutes > 0 && len(c.items) > c.MaxRoutes {
		for k, v := range c.items {
			if len(c.items) <= c.MaxRoutes {
				break
			}
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxRoutes {
				break
			}
			delete(c.items, k)
		}
	}
	c.mu.Unlock()

	return fresh, nil
}

// retotal recomputes the total for the caller's chargeable weight while
// keeping the cached per-kg rate.
func (c *Client) retotal(q quote.Quote, req quote.Request) quote.Quote {
	q.TotalCost = pricing.Round2(q.PricePerKg * pricing.ChargeableWeight(req.Weight, req.Volume))
	return q
}
