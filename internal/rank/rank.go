package rank

import (
	"sort"
	"time"

	"skyrate/internal/quote"
)

// maxPlausiblePrice is the sanity ceiling on USD/kg rates; anything at
// or above it is discarded as implausible.
const maxPlausiblePrice = 50.0

// Score is the composite desirability of a quote: inverse price times
// reliability, with a 1.2x bonus for fast lanes. The bonus keys off the
// structured transit range (at most two days door to door) rather than
// the rendered string, so it survives changes to the range phrasing.
func Score(q quote.Quote) float64 {
	bonus := 1.0
	if q.TransitTime.MaxDays <= 2 {
		bonus = 1.2
	}
	return (1 / q.PricePerKg) * q.Reliability * bonus
}

// valid reports whether a quote passes the price and expiry filters.
func valid(q quote.Quote, now time.Time) bool {
	return q.PricePerKg > 0 && q.PricePerKg < maxPlausiblePrice && q.ValidUntil.After(now)
}

// Rank filters out invalid or expired quotes and orders the rest
// best-first by Score. The sort is stable: equal scores keep source
// order. An empty result is a defined outcome, not an error.
func Rank(quotes []quote.Quote, now time.Time) []quote.Quote {
	out := make([]quote.Quote, 0, len(quotes))
	for _, q := range quotes {
		if valid(q, now) {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i]) > Score(out[j])
	})
	return out
}
