package pricing

import (
	"math"

	"skyrate/internal/quote"
)

// VolumetricFactor converts cubic meters to volumetric kilograms for
// air freight chargeable weight.
const VolumetricFactor = 167.0

// ChargeableWeight is max(actual weight, volume * 167).
func ChargeableWeight(weightKg, volumeM3 float64) float64 {
	return math.Max(weightKg, volumeM3*VolumetricFactor)
}

// Round2 rounds to two decimals, the precision of all wire prices.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RateTable holds per-route base rates (USD per kg) and transit time
// estimates. Tables are immutable once constructed; lookups fall back to
// the defaults for unknown routes.
type RateTable struct {
	Rates          map[string]float64
	DefaultRate    float64
	Transit        map[string]quote.TransitRange
	DefaultTransit quote.TransitRange
}

// DefaultTable returns the built-in rate card covering the main
// China-outbound lanes.
func DefaultTable() RateTable {
	return RateTable{
		Rates: map[string]float64{
			"PVG-LAX": 2.30, "PVG-JFK": 2.80, "PVG-LHR": 3.10, "PVG-FRA": 3.05,
			"PEK-LAX": 2.50, "PEK-JFK": 2.90, "PEK-LHR": 3.15, "PEK-FRA": 3.10,
			"CAN-LAX": 2.20, "CAN-JFK": 2.70, "CAN-LHR": 3.00, "CAN-FRA": 2.95,
			"SZX-LAX": 2.15, "SZX-JFK": 2.65, "SZX-LHR": 2.95, "SZX-FRA": 2.90,
		},
		DefaultRate: 2.50,
		Transit: map[string]quote.TransitRange{
			"PVG-LAX": {MinDays: 2, MaxDays: 3}, "PVG-JFK": {MinDays: 1, MaxDays: 2},
			"PVG-LHR": {MinDays: 1, MaxDays: 2}, "PVG-FRA": {MinDays: 1, MaxDays: 2},
			"PEK-LAX": {MinDays: 2, MaxDays: 3}, "PEK-JFK": {MinDays: 1, MaxDays: 2},
			"PEK-LHR": {MinDays: 1, MaxDays: 2}, "PEK-FRA": {MinDays: 1, MaxDays: 2},
			"CAN-LAX": {MinDays: 2, MaxDays: 3}, "CAN-JFK": {MinDays: 2, MaxDays: 3},
			"CAN-LHR": {MinDays: 2, MaxDays: 3}, "CAN-FRA": {MinDays: 2, MaxDays: 3},
			"SZX-LAX": {MinDays: 2, MaxDays: 3}, "SZX-JFK": {MinDays: 2, MaxDays: 3},
			"SZX-LHR": {MinDays: 2, MaxDays: 3}, "SZX-FRA": {MinDays: 2, MaxDays: 3},
		},
		DefaultTransit: quote.TransitRange{MinDays: 2, MaxDays: 4},
	}
}

// BaseRate looks up the per-kg rate for a route and applies the weight
// bracket discount for the chargeable weight. Brackets are strict:
// exactly 100 kg pays the undiscounted rate.
func (t RateTable) BaseRate(origin, destination string, chargeableWeight float64) float64 {
	rate, ok := t.Rates[origin+"-"+destination]
	if !ok {
		rate = t.DefaultRate
	}
	switch {
	case chargeableWeight > 1000:
		rate *= 0.85
	case chargeableWeight > 500:
		rate *= 0.90
	case chargeableWeight > 100:
		rate *= 0.95
	}
	return rate
}

// TransitTime returns the transit estimate for a route.
func (t RateTable) TransitTime(origin, destination string) quote.TransitRange {
	if tr, ok := t.Transit[origin+"-"+destination]; ok {
		return tr
	}
	return t.DefaultTransit
}
