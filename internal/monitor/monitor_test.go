package monitor

import (
	"testing"
	"time"

	"skyrate/internal/pricing"
	"skyrate/internal/randx"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMonitor() *Monitor {
	return New(pricing.DefaultTable(), randx.New(1), func() time.Time { return testNow })
}

func TestHistory_PointCountPerTimeframe(t *testing.T) {
	m := newMonitor()
	cases := map[string]int{"24h": 25, "": 25, "7d": 169, "30d": 721}
	for timeframe, want := range cases {
		got := m.History("PVG-LAX", timeframe)
		if len(got) != want {
			t.Fatalf("timeframe %q: want %d points, got %d", timeframe, want, len(got))
		}
	}
}

func TestHistory_ShapeAndDefaults(t *testing.T) {
	m := newMonitor()
	h := m.History("", "24h")
	first, last := h[0], h[len(h)-1]
	if first.Route != "PVG-LAX" {
		t.Fatalf("default route: %s", first.Route)
	}
	if !first.Timestamp.Before(last.Timestamp) {
		t.Fatalf("history must be oldest-first: %v .. %v", first.Timestamp, last.Timestamp)
	}
	if !last.Timestamp.Equal(testNow) {
		t.Fatalf("newest point should be now: %v", last.Timestamp)
	}
	for _, p := range h {
		if len(p.Prices) != 5 {
			t.Fatalf("want 5 source series, got %d", len(p.Prices))
		}
		if p.Volume < 50 || p.Volume > 149 {
			t.Fatalf("volume out of range: %d", p.Volume)
		}
	}
}

func TestSnapshot_UnresolvedAlertsOnly(t *testing.T) {
	m := newMonitor()
	rep := m.Snapshot("PVG-LAX", "24h")
	if len(rep.PriceAlerts) != 2 {
		t.Fatalf("want 2 open alerts, got %d", len(rep.PriceAlerts))
	}
	for _, a := range rep.PriceAlerts {
		if a.Resolved {
			t.Fatalf("resolved alert leaked: %+v", a)
		}
		if a.ID == "" {
			t.Fatalf("alert without id: %+v", a)
		}
	}
	if rep.Statistics == nil {
		t.Fatal("want statistics for non-empty history")
	}
	if len(rep.DataSourceStatus) != 5 {
		t.Fatalf("want 5 sources, got %d", len(rep.DataSourceStatus))
	}
}

func TestUpdateBasePrices(t *testing.T) {
	m := newMonitor()
	if err := m.UpdateBasePrices(map[string]float64{"PVG-LAX": 2.45}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if rate, ok := m.BasePrice("PVG-LAX"); !ok || rate != 2.45 {
		t.Fatalf("rate not applied: %v %v", rate, ok)
	}
	if err := m.UpdateBasePrices(nil); err == nil {
		t.Fatal("want error for empty update")
	}
	if err := m.UpdateBasePrices(map[string]float64{"PVG-LAX": -1}); err == nil {
		t.Fatal("want error for non-positive rate")
	}
}

func TestUpdateBasePrices_RejectedBatchLeavesAllRatesUntouched(t *testing.T) {
	m := newMonitor()
	err := m.UpdateBasePrices(map[string]float64{
		"PVG-LAX": 9.99,
		"PEK-JFK": 8.88,
		"CAN-LHR": -1,
	})
	if err == nil {
		t.Fatal("want error for batch with a non-positive rate")
	}
	for route, want := range map[string]float64{"PVG-LAX": 2.30, "PEK-JFK": 2.90, "CAN-LHR": 3.00} {
		if rate, _ := m.BasePrice(route); rate != want {
			t.Fatalf("route %s mutated by rejected batch: %v", route, rate)
		}
	}
}

func TestUpdateBasePrices_DoesNotTouchSharedTable(t *testing.T) {
	table := pricing.DefaultTable()
	m := New(table, randx.New(1), func() time.Time { return testNow })
	if err := m.UpdateBasePrices(map[string]float64{"PVG-LAX": 9.99}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := table.BaseRate("PVG", "LAX", 50); got != 2.30 {
		t.Fatalf("pipeline table mutated: %v", got)
	}
}

func TestToggleDataSource(t *testing.T) {
	m := newMonitor()
	if err := m.ToggleDataSource("Freightos Market"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	rep := m.Snapshot("", "")
	for _, s := range rep.DataSourceStatus {
		if s.Name == "Freightos Market" && s.Status != "online" {
			t.Fatalf("offline source should flip online: %+v", s)
		}
	}
	if err := m.ToggleDataSource("No Such API"); err == nil {
		t.Fatal("want error for unknown source")
	}
}

func TestSetAlertThresholds(t *testing.T) {
	m := newMonitor()
	if err := m.SetAlertThresholds(map[string]float64{"price_spike_pct": 15}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.SetAlertThresholds(nil); err == nil {
		t.Fatal("want error for empty thresholds")
	}
}
