package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"skyrate/internal/pricing"
	"skyrate/internal/quote"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=rest_test -destination=mock_http_client_test.go -source=rest.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes one partner REST pricing endpoint.
type Config struct {
	Name     string
	Category quote.Source
	URL      string
	APIKey   string
}

// Client calls a partner quoting API and normalizes its response into
// the shared quote shape. One Client per real provider.
type Client struct {
	cfg        Config
	httpClient HTTPClient
	header     http.Header
	now        func() time.Time
}

// Option is a configuration option for the REST client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithClock overrides the clock used for quote timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a REST client for one provider endpoint.
func New(cfg Config, options ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		now:        time.Now,
	}
	if c.cfg.Category == "" {
		c.cfg.Category = quote.SourceForwarder
	}
	if cfg.APIKey != "" {
		c.header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Category() quote.Source { return c.cfg.Category }

// quoteRequest is the wire shape posted to the provider.
type quoteRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Weight      float64 `json:"weight"`
	Volume      float64 `json:"volume"`
	CargoType   string  `json:"cargoType"`
}

// quoteResponse is the provider's reply.
type quoteResponse struct {
	PricePerKg   float64 `json:"pricePerKg"`
	Currency     string  `json:"currency"`
	TransitTime  string  `json:"transitTime"`
	ServiceType  string  `json:"serviceType"`
	Reliability  float64 `json:"reliability"`
	ValidSeconds int64   `json:"validSeconds"`
	MarketRank   int     `json:"marketRank"`
}

// Quote posts the shipment to the provider and normalizes the response.
func (c *Client) Quote(ctx context.Context, req quote.Request) (quote.Quote, error) {
	payload, _ := json.Marshal(quoteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Weight:      req.Weight,
		Volume:      req.Volume,
		CargoType:   string(req.CargoType),
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return quote.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = c.header.Clone()
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnauthorized:
		return quote.Quote{}, fmt.Errorf("unauthorized")
	case http.StatusTooManyRequests:
		return quote.Quote{}, fmt.Errorf("rate limited")
	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return quote.Quote{}, fmt.Errorf("POST %s -> %d: %s", c.cfg.URL, res.StatusCode, string(b))
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return quote.Quote{}, fmt.Errorf("decoding quote response: %w", err)
	}
	if body.PricePerKg <= 0 {
		return quote.Quote{}, fmt.Errorf("provider returned non-positive price %v", body.PricePerKg)
	}

	now := c.now().UTC()
	cw := pricing.ChargeableWeight(req.Weight, req.Volume)

	transit, err := parseTransit(body.TransitTime)
	if err != nil {
		return quote.Quote{}, err
	}
	currency := body.Currency
	if currency == "" {
		currency = "USD"
	}
	validity := time.Duration(body.ValidSeconds) * time.Second
	if validity <= 0 {
		validity = 24 * time.Hour
	}
	reliability := body.Reliability
	if reliability <= 0 || reliability > 1 {
		reliability = 0.90
	}

	return quote.Quote{
		Source:      c.cfg.Category,
		Carrier:     c.cfg.Name,
		PricePerKg:  pricing.Round2(body.PricePerKg),
		Currency:    currency,
		TransitTime: transit,
		TotalCost:   pricing.Round2(body.PricePerKg * cw),
		ServiceType: body.ServiceType,
		ValidUntil:  now.Add(validity),
		LastUpdated: now,
		Reliability: reliability,
		MarketRank:  body.MarketRank,
	}, nil
}

func parseTransit(s string) (quote.TransitRange, error) {
	var tr quote.TransitRange
	if s == "" {
		return quote.TransitRange{MinDays: 2, MaxDays: 4}, nil
	}
	if _, err := fmt.Sscanf(s, "%d-%d days", &tr.MinDays, &tr.MaxDays); err != nil {
		return tr, fmt.Errorf("decoding transit time %q: %w", s, err)
	}
	return tr, nil
}
