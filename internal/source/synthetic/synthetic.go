package synthetic

import (
	"context"
	"time"

	"skyrate/internal/pricing"
	"skyrate/internal/quote"
	"skyrate/internal/randx"
)

// Per-category quote parameters: service label, validity window and the
// reliability constant assigned to quotes from that category.
var categoryParams = map[quote.Source]struct {
	serviceType string
	validity    time.Duration
	reliability float64
}{
	quote.SourceAirline:     {"Direct Airline", 24 * time.Hour, 0.95},
	quote.SourceForwarder:   {"Freight Forwarder", 48 * time.Hour, 0.90},
	quote.SourceMarketplace: {"Market Average", 12 * time.Hour, 0.85},
}

// forwarderServices is attached to every forwarder quote.
var forwarderServices = []string{"Customs Clearance", "Door to Door", "Insurance"}

// Config describes one simulated carrier.
type Config struct {
	Name        string
	Category    quote.Source
	PriceFactor float64
	Table       pricing.RateTable
}

// Client generates normalized quotes for one simulated carrier. It stands
// in for a real provider integration behind the same source.Client seam.
type Client struct {
	cfg Config
	rnd *randx.Rand
	now func() time.Time
}

// New builds a synthetic client. rnd is the injected randomness used for
// the market rank placeholder; the same Rand may be shared across
// clients. now defaults to time.Now when nil.
func New(cfg Config, rnd *randx.Rand, now func() time.Time) *Client {
	if cfg.PriceFactor <= 0 {
		cfg.PriceFactor = 1.0
	}
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = randx.New(0)
	}
	return &Client{cfg: cfg, rnd: rnd, now: now}
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Category() quote.Source { return c.cfg.Category }

// Quote prices the request against the rate table and the carrier's
// price factor. It never fails: there is no network call behind it.
func (c *Client) Quote(_ context.Context, req quote.Request) (quote.Quote, error) {
	now := c.now().UTC()
	params := categoryParams[c.cfg.Category]

	cw := pricing.ChargeableWeight(req.Weight, req.Volume)
	perKg := c.cfg.Table.BaseRate(req.Origin, req.Destination, cw) * c.cfg.PriceFactor

	q := quote.Quote{
		Source:      c.cfg.Category,
		Carrier:     c.cfg.Name,
		PricePerKg:  pricing.Round2(perKg),
		Currency:    "USD",
		TransitTime: c.cfg.Table.TransitTime(req.Origin, req.Destination),
		TotalCost:   pricing.Round2(perKg * cw),
		ServiceType: params.serviceType,
		ValidUntil:  now.Add(params.validity),
		LastUpdated: now,
		Reliability: params.reliability,
		MarketRank:  c.rnd.Intn(10) + 1,
	}
	if c.cfg.Category == quote.SourceForwarder {
		q.AdditionalServices = append([]string(nil), forwarderServices...)
	}
	return q, nil
}

// fallbackCarrier is one entry of the degraded-mode quote set.
type fallbackCarrier struct {
	name     string
	factor   float64
	category quote.Source
}

var fallbackCarriers = []fallbackCarrier{
	{"Air China", 0.95, quote.SourceAirline},
	{"China Eastern", 0.92, quote.SourceAirline},
	{"FreightHub", 0.88, quote.SourceForwarder},
	{"Flexport", 0.93, quote.SourceForwarder},
	{"Freightos Market", 0.91, quote.SourceMarketplace},
}

// Fallback produces the degraded-mode quote set covering all known
// carriers, with a +-10% price perturbation from rnd. Quotes are valid
// for 24h regardless of category so the set survives validity filtering.
func Fallback(req quote.Request, table pricing.RateTable, rnd *randx.Rand, nowFn func() time.Time) []quote.Quote {
	if nowFn == nil {
		nowFn = time.Now
	}
	if rnd == nil {
		rnd = randx.New(0)
	}
	now := nowFn().UTC()
	cw := pricing.ChargeableWeight(req.Weight, req.Volume)

	out := make([]quote.Quote, 0, len(fallbackCarriers))
	for _, fc := range fallbackCarriers {
		perKg := table.BaseRate(req.Origin, req.Destination, cw) * fc.factor * (0.9 + rnd.Float64()*0.2)
		out = append(out, quote.Quote{
			Source:      fc.category,
			Carrier:     fc.name,
			PricePerKg:  pricing.Round2(perKg),
			Currency:    "USD",
			TransitTime: table.TransitTime(req.Origin, req.Destination),
			TotalCost:   pricing.Round2(perKg * cw),
			ServiceType: categoryParams[fc.category].serviceType,
			ValidUntil:  now.Add(24 * time.Hour),
			LastUpdated: now,
			Reliability: 0.85 + rnd.Float64()*0.15,
			MarketRank:  rnd.Intn(10) + 1,
		})
	}
	return out
}
