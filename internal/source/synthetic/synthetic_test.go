package synthetic

import (
	"context"
	"math"
	"testing"
	"time"

	"skyrate/internal/pricing"
	"skyrate/internal/quote"
	"skyrate/internal/randx"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func request() quote.Request {
	return quote.Request{
		Origin:      "PVG",
		Destination: "LAX",
		Weight:      100,
		Volume:      0.5,
		CargoType:   quote.CargoGeneral,
		Email:       "a@b.com",
	}
}

func newClient(category quote.Source, factor float64) *Client {
	return New(Config{
		Name:        "Test Carrier",
		Category:    category,
		PriceFactor: factor,
		Table:       pricing.DefaultTable(),
	}, randx.New(1), fixedNow)
}

func TestQuote_AirlinePricing(t *testing.T) {
	c := newClient(quote.SourceAirline, 0.95)
	q, err := c.Quote(context.Background(), request())
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// chargeable weight 100 (volumetric 83.5), base 2.30, no bracket discount
	wantPerKg := pricing.Round2(2.30 * 0.95)
	if q.PricePerKg != wantPerKg {
		t.Fatalf("price: want %v, got %v", wantPerKg, q.PricePerKg)
	}
	if q.Currency != "USD" || q.Source != quote.SourceAirline {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.ServiceType != "Direct Airline" || q.Reliability != 0.95 {
		t.Fatalf("airline params: %+v", q)
	}
	if !q.ValidUntil.Equal(testNow.Add(24 * time.Hour)) {
		t.Fatalf("validity: %v", q.ValidUntil)
	}
	if q.MarketRank < 1 || q.MarketRank > 10 {
		t.Fatalf("market rank out of range: %d", q.MarketRank)
	}
	if len(q.AdditionalServices) != 0 {
		t.Fatalf("airline should have no additional services: %v", q.AdditionalServices)
	}
}

func TestQuote_CategoryParams(t *testing.T) {
	fwd, _ := newClient(quote.SourceForwarder, 0.88).Quote(context.Background(), request())
	if fwd.ServiceType != "Freight Forwarder" || fwd.Reliability != 0.90 {
		t.Fatalf("forwarder params: %+v", fwd)
	}
	if !fwd.ValidUntil.Equal(testNow.Add(48 * time.Hour)) {
		t.Fatalf("forwarder validity: %v", fwd.ValidUntil)
	}
	if len(fwd.AdditionalServices) != 3 {
		t.Fatalf("forwarder services: %v", fwd.AdditionalServices)
	}

	mkt, _ := newClient(quote.SourceMarketplace, 0.91).Quote(context.Background(), request())
	if mkt.ServiceType != "Market Average" || mkt.Reliability != 0.85 {
		t.Fatalf("marketplace params: %+v", mkt)
	}
	if !mkt.ValidUntil.Equal(testNow.Add(12 * time.Hour)) {
		t.Fatalf("marketplace validity: %v", mkt.ValidUntil)
	}
}

func TestQuote_TotalCostInvariant(t *testing.T) {
	req := request()
	req.Weight = 30
	req.Volume = 2 // volumetric 334 beats actual
	c := newClient(quote.SourceAirline, 1.05)
	q, err := c.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	cw := pricing.ChargeableWeight(req.Weight, req.Volume)
	perKg := 2.30 * 0.95 * 1.05 // >100 bracket applies at 334 kg
	want := pricing.Round2(perKg * cw)
	if math.Abs(q.TotalCost-want) > 0.011 {
		t.Fatalf("total: want ~%v, got %v", want, q.TotalCost)
	}
	if q.PricePerKg <= 0 {
		t.Fatalf("non-positive price: %v", q.PricePerKg)
	}
}

func TestQuote_DeterministicWithSeed(t *testing.T) {
	a, _ := newClient(quote.SourceAirline, 0.95).Quote(context.Background(), request())
	b, _ := newClient(quote.SourceAirline, 0.95).Quote(context.Background(), request())
	if a.MarketRank != b.MarketRank {
		t.Fatalf("same seed should pin market rank: %d vs %d", a.MarketRank, b.MarketRank)
	}
}

func TestFallback_CoversAllCarriersWithinJitterBounds(t *testing.T) {
	rnd := randx.New(7)
	out := Fallback(request(), pricing.DefaultTable(), rnd, fixedNow)
	if len(out) != 5 {
		t.Fatalf("want 5 fallback quotes, got %d", len(out))
	}
	for _, q := range out {
		if q.PricePerKg <= 0 || q.PricePerKg >= 50 {
			t.Fatalf("fallback price outside sane range: %+v", q)
		}
		// base 2.30, factors in [0.87,1.05], jitter in [0.9,1.1)
		if q.PricePerKg < 2.30*0.85*0.9 || q.PricePerKg > 2.30*1.05*1.1 {
			t.Fatalf("jitter out of bounds: %v", q.PricePerKg)
		}
		if q.Reliability < 0.85 || q.Reliability > 1.0 {
			t.Fatalf("reliability out of bounds: %v", q.Reliability)
		}
		if !q.ValidUntil.After(testNow) {
			t.Fatalf("fallback quote already expired: %v", q.ValidUntil)
		}
	}
}
