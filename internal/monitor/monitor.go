package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"skyrate/internal/pricing"
	"skyrate/internal/randx"
	"skyrate/internal/stats"
)

// SourceStatus is the health of one upstream pricing source.
type SourceStatus struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	LatencyMs  *int   `json:"latency"`
	LastUpdate string `json:"lastUpdate"`
}

// Alert is a price or availability anomaly surfaced on the dashboard.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Route     string    `json:"route,omitempty"`
	Source    string    `json:"source,omitempty"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

// Report is the GET payload for the monitoring view.
type Report struct {
	PriceHistory     []stats.HistoryPoint `json:"priceHistory"`
	DataSourceStatus []SourceStatus       `json:"dataSourceStatus"`
	PriceAlerts      []Alert              `json:"priceAlerts"`
	Statistics       *stats.Summary       `json:"statistics"`
	LastUpdated      time.Time            `json:"lastUpdated"`
}

// seriesBase holds the center price for each tracked source series; the
// generator jitters around these.
var seriesBase = map[string]float64{
	"airChina":      2.30,
	"chinaEastern":  2.25,
	"freighthub":    2.15,
	"flexport":      2.35,
	"marketAverage": 2.28,
}

// Monitor owns the monitoring state: source health, alerts, alert
// thresholds and the rate table on display. History is generated
// synthetically per request until a time-series store backs it.
type Monitor struct {
	now func() time.Time
	rnd *randx.Rand

	mu         sync.Mutex
	table      pricing.RateTable
	sources    []SourceStatus
	alerts     []Alert
	thresholds map[string]float64
}

// New builds a Monitor seeded with the default source fleet and the
// currently open alerts.
func New(table pricing.RateTable, rnd *randx.Rand, now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = randx.New(0)
	}
	// Copy the rate map: the pipeline's table stays immutable while the
	// monitor's copy is editable through UpdateBasePrices.
	rates := make(map[string]float64, len(table.Rates))
	for k, v := range table.Rates {
		rates[k] = v
	}
	table.Rates = rates

	m := &Monitor{
		now:        now,
		rnd:        rnd,
		table:      table,
		thresholds: map[string]float64{},
	}
	m.sources = defaultSources()
	m.alerts = seedAlerts(now())
	return m
}

func defaultSources() []SourceStatus {
	ms := func(v int) *int { return &v }
	return []SourceStatus{
		{Name: "Air China API", Status: "online", LatencyMs: ms(150), LastUpdate: "2 minutes ago"},
		{Name: "China Eastern API", Status: "online", LatencyMs: ms(200), LastUpdate: "1 minute ago"},
		{Name: "FreightHub API", Status: "online", LatencyMs: ms(180), LastUpdate: "3 minutes ago"},
		{Name: "Flexport API", Status: "degraded", LatencyMs: ms(500), LastUpdate: "10 minutes ago"},
		{Name: "Freightos Market", Status: "offline", LatencyMs: nil, LastUpdate: "2 hours ago"},
	}
}

func seedAlerts(now time.Time) []Alert {
	return []Alert{
		{
			ID: uuid.NewString(), Type: "price_spike", Route: "PVG-LAX",
			Message:  "Price spike detected: 15% increase in last hour",
			Severity: "medium", Timestamp: now.Add(-30 * time.Minute),
		},
		{
			ID: uuid.NewString(), Type: "data_source_down", Source: "Freightos Market",
			Message:  "Data source offline for 2+ hours",
			Severity: "high", Timestamp: now.Add(-2 * time.Hour),
		},
		{
			ID: uuid.NewString(), Type: "price_divergence", Route: "PEK-JFK",
			Message:  "High price variance between sources (>20%)",
			Severity: "low", Timestamp: now.Add(-time.Hour), Resolved: true,
		},
	}
}

// historyHours maps a timeframe tag to the number of hourly points.
func historyHours(timeframe string) int {
	switch timeframe {
	case "24h", "":
		return 24
	case "7d":
		return 168
	default:
		return 720
	}
}

// History generates a synthetic hourly price series for the route. Real
// deployments would read this from a time-series store instead.
func (m *Monitor) History(route, timeframe string) []stats.HistoryPoint {
	if route == "" {
		route = "PVG-LAX"
	}
	hours := historyHours(timeframe)
	now := m.now().UTC()

	out := make([]stats.HistoryPoint, 0, hours+1)
	for i := hours; i >= 0; i-- {
		prices := make(map[string]float64, len(seriesBase))
		for name, base := range seriesBase {
			prices[name] = base + (m.rnd.Float64()-0.5)*0.2
		}
		out = append(out, stats.HistoryPoint{
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			Route:     route,
			Prices:    prices,
			Volume:    m.rnd.Intn(100) + 50,
		})
	}
	return out
}

// Snapshot assembles the full monitoring report for a route and
// timeframe. Only unresolved alerts are included.
func (m *Monitor) Snapshot(route, timeframe string) Report {
	history := m.History(route, timeframe)
	now := m.now().UTC()

	m.mu.Lock()
	sources := append([]SourceStatus(nil), m.sources...)
	var open []Alert
	for _, a := range m.alerts {
		if !a.Resolved {
			open = append(open, a)
		}
	}
	m.mu.Unlock()

	return Report{
		PriceHistory:     history,
		DataSourceStatus: sources,
		PriceAlerts:      open,
		Statistics:       stats.Summarize(history, now),
		LastUpdated:      now,
	}
}

// UpdateBasePrices replaces display rates for the given routes. The
// update is all-or-nothing: a rejected rate leaves every route as it
// was.
func (m *Monitor) UpdateBasePrices(rates map[string]float64) error {
	if len(rates) == 0 {
		return fmt.Errorf("no rates supplied")
	}
	for route, rate := range rates {
		if rate <= 0 {
			return fmt.Errorf("rate for %s must be positive", route)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for route, rate := range rates {
		m.table.Rates[route] = rate
	}
	return nil
}

// BasePrice returns the display rate currently configured for a route.
func (m *Monitor) BasePrice(route string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rate, ok := m.table.Rates[route]
	return rate, ok
}

// SetAlertThresholds stores the alerting thresholds by name.
func (m *Monitor) SetAlertThresholds(thresholds map[string]float64) error {
	if len(thresholds) == 0 {
		return fmt.Errorf("no thresholds supplied")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range thresholds {
		m.thresholds[k] = v
	}
	return nil
}

// ToggleDataSource flips a source between online and offline.
func (m *Monitor) ToggleDataSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sources {
		if m.sources[i].Name != name {
			continue
		}
		if m.sources[i].Status == "offline" {
			m.sources[i].Status = "online"
		} else {
			m.sources[i].Status = "offline"
		}
		m.sources[i].LastUpdate = "just now"
		return nil
	}
	return fmt.Errorf("unknown data source %q", name)
}
