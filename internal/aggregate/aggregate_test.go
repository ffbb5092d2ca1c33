package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skyrate/internal/pricing"
	"skyrate/internal/quote"
	"skyrate/internal/randx"
	"skyrate/internal/source"
	"skyrate/internal/source/synthetic"
)

type fakeClient struct {
	name string
	q    quote.Quote
	err  error
	// delay simulates a slow provider
	delay time.Duration
	calls int
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Category() quote.Source { return quote.SourceAirline }

func (f *fakeClient) Quote(ctx context.Context, _ quote.Request) (quote.Quote, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return quote.Quote{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.q, f.err
}

func request() quote.Request {
	return quote.Request{Origin: "PVG", Destination: "LAX", Weight: 100, Volume: 0.5, Email: "a@b.com"}
}

func TestCollect_PartialFailureKeepsSuccesses(t *testing.T) {
	ok := &fakeClient{name: "good", q: quote.Quote{Carrier: "good", PricePerKg: 2.19}}
	bad := &fakeClient{name: "bad", err: errors.New("upstream 500")}

	agg := New([]source.Client{ok, bad}, nil, time.Second)
	got := agg.Collect(context.Background(), request())
	if len(got) != 1 || got[0].Carrier != "good" {
		t.Fatalf("want only the good quote, got %+v", got)
	}
}

func TestCollect_AllSettleBeforeReturn(t *testing.T) {
	a := &fakeClient{name: "a", q: quote.Quote{Carrier: "a"}}
	b := &fakeClient{name: "b", q: quote.Quote{Carrier: "b"}, delay: 20 * time.Millisecond}
	c := &fakeClient{name: "c", err: errors.New("boom")}

	agg := New([]source.Client{a, b, c}, nil, time.Second)
	got := agg.Collect(context.Background(), request())
	if len(got) != 2 {
		t.Fatalf("want 2 quotes, got %d: %+v", len(got), got)
	}
	for _, f := range []*fakeClient{a, b, c} {
		if f.calls != 1 {
			t.Fatalf("%s called %d times", f.name, f.calls)
		}
	}
}

func TestCollect_AllFailedUsesFallback(t *testing.T) {
	bad1 := &fakeClient{name: "bad1", err: errors.New("x")}
	bad2 := &fakeClient{name: "bad2", err: errors.New("y")}
	fallback := func(quote.Request) []quote.Quote {
		return []quote.Quote{{Carrier: "synthetic"}}
	}

	agg := New([]source.Client{bad1, bad2}, fallback, time.Second)
	got := agg.Collect(context.Background(), request())
	if len(got) != 1 || got[0].Carrier != "synthetic" {
		t.Fatalf("want fallback set, got %+v", got)
	}
}

func TestCollect_NoClientsUsesFallback(t *testing.T) {
	fallback := func(quote.Request) []quote.Quote {
		return []quote.Quote{{Carrier: "synthetic"}}
	}
	agg := New(nil, fallback, time.Second)
	got := agg.Collect(context.Background(), request())
	if len(got) != 1 || got[0].Carrier != "synthetic" {
		t.Fatalf("want fallback set, got %+v", got)
	}
}

// One Rand is shared by every synthetic client and the fallback, the
// way the server wires them; overlapping requests must be able to draw
// from it concurrently.
func TestCollect_ConcurrentRequestsShareOneRand(t *testing.T) {
	rnd := randx.New(1)
	table := pricing.DefaultTable()
	names := []string{"Air China", "China Eastern", "China Southern", "FreightHub", "Flexport", "Freightos Marketplace"}
	clients := make([]source.Client, 0, len(names))
	for _, name := range names {
		clients = append(clients, synthetic.New(synthetic.Config{
			Name:        name,
			Category:    quote.SourceAirline,
			PriceFactor: 0.95,
			Table:       table,
		}, rnd, nil))
	}
	fallback := func(r quote.Request) []quote.Quote {
		return synthetic.Fallback(r, table, rnd, nil)
	}
	agg := New(clients, fallback, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if got := agg.Collect(context.Background(), request()); len(got) != len(names) {
					t.Errorf("want %d quotes, got %d", len(names), len(got))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestCollect_TimeoutTreatsStragglerAsFailed(t *testing.T) {
	fast := &fakeClient{name: "fast", q: quote.Quote{Carrier: "fast"}}
	slow := &fakeClient{name: "slow", q: quote.Quote{Carrier: "slow"}, delay: 500 * time.Millisecond}

	agg := New([]source.Client{fast, slow}, nil, 30*time.Millisecond)
	got := agg.Collect(context.Background(), request())
	if len(got) != 1 || got[0].Carrier != "fast" {
		t.Fatalf("want only the fast quote, got %+v", got)
	}
}
