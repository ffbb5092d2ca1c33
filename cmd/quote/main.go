package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"skyrate/internal/aggregate"
	"skyrate/internal/config"
	"skyrate/internal/pricing"
	"skyrate/internal/quote"
	"skyrate/internal/randx"
	"skyrate/internal/rank"
	"skyrate/internal/source"
	"skyrate/internal/source/synthetic"
)

// Runs the aggregation pipeline once from the command line and prints
// the ranked quotes as JSON, without starting the HTTP server.
func main() {
	var origin, destination, cargoType, configPath string
	var weight, volume float64
	var seed int64

	flag.StringVar(&origin, "origin", "PVG", "origin IATA code")
	flag.StringVar(&destination, "destination", "LAX", "destination IATA code")
	flag.Float64Var(&weight, "weight", 100, "shipment weight in kg")
	flag.Float64Var(&volume, "volume", 0.5, "shipment volume in cubic meters")
	flag.StringVar(&cargoType, "cargo", "general", "cargo type")
	flag.Int64Var(&seed, "seed", 0, "randomness seed (0 = clock)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yml (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if seed == 0 {
		seed = cfg.Sources.Seed
	}
	rnd := randx.New(seed)
	table := pricing.DefaultTable()

	var clients []source.Client
	for _, carrier := range cfg.Sources.Carriers {
		if !carrier.Enabled {
			continue
		}
		clients = append(clients, synthetic.New(synthetic.Config{
			Name:        carrier.Name,
			Category:    quote.Source(carrier.Category),
			PriceFactor: carrier.Factor,
			Table:       table,
		}, rnd, time.Now))
	}

	req := quote.Request{
		Origin:      origin,
		Destination: destination,
		Weight:      weight,
		Volume:      volume,
		CargoType:   quote.CargoType(cargoType),
		Email:       "cli@skyrate.local",
	}
	if err := req.Validate(); err != nil {
		log.Fatalf("request: %v", err)
	}

	fallback := func(r quote.Request) []quote.Quote {
		return synthetic.Fallback(r, table, rnd, time.Now)
	}
	agg := aggregate.New(clients, fallback, time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ranked := rank.Rank(agg.Collect(ctx, req), time.Now().UTC())
	if len(ranked) == 0 {
		log.Fatal("no available quotes for this route")
	}

	out := struct {
		Quotes []quote.Quote `json:"quotes"`
	}{Quotes: ranked}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
