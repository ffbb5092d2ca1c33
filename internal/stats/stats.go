package stats

import (
	"math"
	"sort"
	"time"
)

// HistoryPoint is one observation of per-source prices on a route.
type HistoryPoint struct {
	Timestamp time.Time          `json:"timestamp"`
	Route     string             `json:"route"`
	Prices    map[string]float64 `json:"prices"`
	Volume    int                `json:"volume"`
}

// Summary is the descriptive statistics block served to the monitoring
// dashboard.
type Summary struct {
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
	PriceRange float64 `json:"priceRange"`
	Variance   float64 `json:"variance"`
	Trend      string  `json:"trend"`
	Confidence int     `json:"confidence"`
}

// Trend classifications.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Confidence factor weights; must sum to 1.
const (
	weightFreshness   = 0.3
	weightReliability = 0.3
	weightStability   = 0.2
	weightVolume      = 0.2
)

// Source reliability is currently a fixed ratio of known-online sources.
const (
	onlineSources = 3
	totalSources  = 5
)

// representativeSource is the series used for trend and stability when
// present in a point's price map.
const representativeSource = "airChina"

// Variance is the population variance mean((x-mean)^2).
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}

// representativePrice picks the tracked series from a point, falling
// back to the lexicographically smallest source key so the choice is
// deterministic.
func representativePrice(prices map[string]float64) (float64, bool) {
	if v, ok := prices[representativeSource]; ok {
		return v, true
	}
	if len(prices) == 0 {
		return 0, false
	}
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return prices[keys[0]], true
}

// Trend compares the first and last representative prices across the
// window: more than +5% is rising, less than -5% falling, else stable.
// Fewer than two points is stable by definition.
func Trend(history []HistoryPoint) string {
	if len(history) < 2 {
		return TrendStable
	}
	first, ok1 := representativePrice(history[0].Prices)
	last, ok2 := representativePrice(history[len(history)-1].Prices)
	if !ok1 || !ok2 || first == 0 {
		return TrendStable
	}
	change := (last - first) / first * 100
	switch {
	case change > 5:
		return TrendRising
	case change < -5:
		return TrendFalling
	default:
		return TrendStable
	}
}

// Confidence combines data freshness, source reliability, price
// stability and query volume into a single 0-100 score. An empty
// history scores 0.
func Confidence(history []HistoryPoint, now time.Time) int {
	if len(history) == 0 {
		return 0
	}
	score := freshness(history, now)*weightFreshness +
		reliability()*weightReliability +
		stability(history)*weightStability +
		volume(history)*weightVolume
	return int(math.Round(score))
}

func freshness(history []HistoryPoint, now time.Time) float64 {
	age := now.Sub(history[len(history)-1].Timestamp).Minutes()
	switch {
	case age < 5:
		return 100
	case age < 15:
		return 80
	case age < 60:
		return 60
	default:
		return 30
	}
}

func reliability() float64 {
	return float64(onlineSources) / float64(totalSources) * 100
}

func stability(history []HistoryPoint) float64 {
	if len(history) < 10 {
		return 50
	}
	recent := history[len(history)-10:]
	prices := make([]float64, 0, len(recent))
	for _, p := range recent {
		if v, ok := representativePrice(p.Prices); ok {
			prices = append(prices, v)
		}
	}
	v := Variance(prices)
	switch {
	case v < 0.01:
		return 100
	case v < 0.05:
		return 80
	case v < 0.1:
		return 60
	default:
		return 40
	}
}

func volume(history []HistoryPoint) float64 {
	window := history
	if len(window) > 24 {
		window = window[len(window)-24:]
	}
	var sum int
	for _, p := range window {
		sum += p.Volume
	}
	switch {
	case sum > 1000:
		return 100
	case sum > 500:
		return 80
	case sum > 200:
		return 60
	default:
		return 40
	}
}

// Summarize computes the full statistics block over a history ordered
// oldest-first. It returns nil for an empty history: statistics are
// undefined, which is a valid absent result, not an error.
func Summarize(history []HistoryPoint, now time.Time) *Summary {
	if len(history) == 0 {
		return nil
	}

	latest := history[len(history)-1]
	prices := make([]float64, 0, len(latest.Prices))
	for _, v := range latest.Prices {
		prices = append(prices, v)
	}
	if len(prices) == 0 {
		return nil
	}

	var sum float64
	minP, maxP := prices[0], prices[0]
	for _, v := range prices {
		sum += v
		if v < minP {
			minP = v
		}
		if v > maxP {
			maxP = v
		}
	}

	trendWindow := history
	if len(trendWindow) > 24 {
		trendWindow = trendWindow[len(trendWindow)-24:]
	}

	return &Summary{
		AvgPrice:   round2(sum / float64(len(prices))),
		MinPrice:   round2(minP),
		MaxPrice:   round2(maxP),
		PriceRange: round2(maxP - minP),
		Variance:   round4(Variance(prices)),
		Trend:      Trend(trendWindow),
		Confidence: Confidence(history, now),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
