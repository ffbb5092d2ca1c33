package quote

import (
	"errors"
	"fmt"
	"time"
)

// Source is the category of a quote origin.
type Source string

const (
	SourceAirline     Source = "airline"
	SourceForwarder   Source = "forwarder"
	SourceMarketplace Source = "marketplace"
)

// CargoType classifies the shipped goods.
type CargoType string

const (
	CargoGeneral     CargoType = "general"
	CargoElectronics CargoType = "electronics"
	CargoTextiles    CargoType = "textiles"
	CargoMachinery   CargoType = "machinery"
	CargoDangerous   CargoType = "dangerous"
)

// Validation errors for Request.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidIATA   = errors.New("invalid IATA code format")
	ErrNonPositive   = errors.New("weight and volume must be greater than 0")
)

// Request is a shipment quote request.
type Request struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Weight      float64   `json:"weight"`
	Volume      float64   `json:"volume"`
	CargoType   CargoType `json:"cargoType"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
}

// Validate checks the request contract. Weight and volume must be strictly
// positive and airport codes exactly three characters.
func (r Request) Validate() error {
	if r.Origin == "" || r.Destination == "" || r.Weight == 0 || r.Volume == 0 || r.Email == "" {
		return ErrMissingFields
	}
	if len(r.Origin) != 3 || len(r.Destination) != 3 {
		return ErrInvalidIATA
	}
	if r.Weight <= 0 || r.Volume <= 0 {
		return ErrNonPositive
	}
	return nil
}

// Route returns the "ORG-DST" route key used by the rate tables.
func (r Request) Route() string {
	return r.Origin + "-" + r.Destination
}

// TransitRange is a transit time estimate in whole days.
// It renders on the wire as the range descriptor, e.g. "2-3 days".
type TransitRange struct {
	MinDays int
	MaxDays int
}

func (t TransitRange) String() string {
	return fmt.Sprintf("%d-%d days", t.MinDays, t.MaxDays)
}

func (t TransitRange) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TransitRange) UnmarshalJSON(b []byte) error {
	var min, max int
	if _, err := fmt.Sscanf(string(b), `"%d-%d days"`, &min, &max); err != nil {
		return fmt.Errorf("parse transit range %s: %w", string(b), err)
	}
	t.MinDays, t.MaxDays = min, max
	return nil
}

// Quote is the normalized shape produced by all quote sources.
type Quote struct {
	Source             Source       `json:"source"`
	Carrier            string       `json:"carrier"`
	PricePerKg         float64      `json:"price"`
	Currency           string       `json:"currency"`
	TransitTime        TransitRange `json:"transitTime"`
	TotalCost          float64      `json:"totalCost"`
	ServiceType        string       `json:"serviceType"`
	ValidUntil         time.Time    `json:"validUntil"`
	LastUpdated        time.Time    `json:"lastUpdated"`
	Reliability        float64      `json:"reliability"`
	MarketRank         int          `json:"marketRank"`
	AdditionalServices []string     `json:"additionalServices,omitempty"`
}
