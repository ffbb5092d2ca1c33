package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"skyrate/internal/aggregate"
	"skyrate/internal/logger"
	"skyrate/internal/monitor"
	"skyrate/internal/quote"
	"skyrate/internal/randx"
	"skyrate/internal/rank"
)

const disclaimer = "Prices are subject to change. Final rates confirmed upon booking."

// Handler serves the quote and price-monitor endpoints.
type Handler struct {
	agg *aggregate.Aggregator
	mon *monitor.Monitor
	rnd *randx.Rand
	now func() time.Time
	log *logrus.Entry
}

// NewHandler wires the aggregation pipeline and the monitor behind the
// HTTP surface. rnd seeds quote id suffixes; now defaults to time.Now.
func NewHandler(agg *aggregate.Aggregator, mon *monitor.Monitor, rnd *randx.Rand, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = randx.New(0)
	}
	return &Handler{
		agg: agg,
		mon: mon,
		now: now,
		rnd: rnd,
		log: logger.Get().WithComponent("httpapi"),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type quoteMetadata struct {
	QuoteID     string    `json:"quoteId"`
	ValidUntil  time.Time `json:"validUntil"`
	LastUpdated time.Time `json:"lastUpdated"`
	Disclaimer  string    `json:"disclaimer"`
}

type quoteResponse struct {
	Success      bool          `json:"success"`
	Data         quote.Quote   `json:"data"`
	Alternatives []quote.Quote `json:"alternatives"`
	Metadata     quoteMetadata `json:"metadata"`
}

// Quote handles POST /api/quote: validate, fan out, rank, return the
// best quote plus up to two alternatives.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.now().UTC()
	ranked := rank.Rank(h.agg.Collect(r.Context(), req), now)

	h.logRequest(req, ranked)

	if len(ranked) == 0 {
		writeError(w, http.StatusNotFound, "no available quotes for this route")
		return
	}

	alternatives := ranked[1:]
	if len(alternatives) > 2 {
		alternatives = alternatives[:2]
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Success:      true,
		Data:         ranked[0],
		Alternatives: alternatives,
		Metadata: quoteMetadata{
			QuoteID:     h.newQuoteID(now),
			ValidUntil:  now.Add(24 * time.Hour),
			LastUpdated: now,
			Disclaimer:  disclaimer,
		},
	})
}

// logRequest records each served quote request for later price analysis.
func (h *Handler) logRequest(req quote.Request, ranked []quote.Quote) {
	client := req.Company
	if client == "" {
		client = req.Email
	}
	fields := logger.Fields{
		"route":  req.Route(),
		"client": client,
		"quotes": len(ranked),
	}
	if len(ranked) > 0 {
		fields["best_price"] = ranked[0].PricePerKg
	}
	h.log.WithFields(fields).Info("quote request served")
}

const idCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newQuoteID builds ids like SKYMDQ3K1A7F3QZ: "SKY", the timestamp in
// base36, and a 5-character random suffix.
func (h *Handler) newQuoteID(now time.Time) string {
	var b strings.Builder
	b.WriteString("SKY")
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	for i := 0; i < 5; i++ {
		b.WriteByte(idCharset[h.rnd.Intn(len(idCharset))])
	}
	return b.String()
}

type monitorResponse struct {
	Success bool           `json:"success"`
	Data    monitor.Report `json:"data"`
}

// PriceMonitor handles GET /api/price-monitor.
func (h *Handler) PriceMonitor(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("route")
	timeframe := r.URL.Query().Get("timeframe")
	writeJSON(w, http.StatusOK, monitorResponse{
		Success: true,
		Data:    h.mon.Snapshot(route, timeframe),
	})
}

type configUpdate struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UpdateMonitorConfig handles POST /api/price-monitor: named
// configuration changes against the monitor.
func (h *Handler) UpdateMonitorConfig(w http.ResponseWriter, r *http.Request) {
	var upd configUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var err error
	switch upd.Type {
	case "update_base_prices":
		var rates map[string]float64
		if err = json.Unmarshal(upd.Data, &rates); err == nil {
			err = h.mon.UpdateBasePrices(rates)
		}
	case "set_alert_thresholds":
		var thresholds map[string]float64
		if err = json.Unmarshal(upd.Data, &thresholds); err == nil {
			err = h.mon.SetAlertThresholds(thresholds)
		}
	case "toggle_data_source":
		var body struct {
			Name string `json:"name"`
		}
		if err = json.Unmarshal(upd.Data, &body); err == nil {
			err = h.mon.ToggleDataSource(body.Name)
		}
	default:
		writeError(w, http.StatusBadRequest, "invalid update type")
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("type", upd.Type).Warn("monitor config update rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "configuration updated successfully",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
