package aggregate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"skyrate/internal/logger"
	"skyrate/internal/quote"
	"skyrate/internal/source"
)

// Fallback synthesizes a full quote set when every source failed or none
// are configured.
type Fallback func(quote.Request) []quote.Quote

// Aggregator fans a request out to all configured sources and collects
// whatever succeeded. Individual source failures never abort the others;
// they are logged and dropped.
type Aggregator struct {
	clients  []source.Client
	fallback Fallback
	timeout  time.Duration
	log      *logrus.Entry
}

// New builds an Aggregator. timeout bounds the whole fan-out; a source
// that has not settled by then is treated as failed.
func New(clients []source.Client, fallback Fallback, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Aggregator{
		clients:  clients,
		fallback: fallback,
		timeout:  timeout,
		log:      logger.Get().WithComponent("aggregate"),
	}
}

// Collect returns all quotes that settled successfully. If the set is
// empty the fallback set is returned instead, so a non-empty result is
// guaranteed whenever a fallback is configured.
func (a *Aggregator) Collect(ctx context.Context, req quote.Request) []quote.Quote {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type result struct {
		name string
		q    quote.Quote
		err  error
	}
	ch := make(chan result, len(a.clients))
	for _, c := range a.clients {
		c := c
		go func() {
			q, err := c.Quote(ctx, req)
			ch <- result{name: c.Name(), q: q, err: err}
		}()
	}

	quotes := make([]quote.Quote, 0, len(a.clients))
	for i := 0; i < len(a.clients); i++ {
		r := <-ch
		if r.err != nil {
			a.log.WithFields(logger.Fields{"source": r.name, "route": req.Route()}).
				WithError(r.err).Warn("source failed, excluding from results")
			continue
		}
		quotes = append(quotes, r.q)
	}

	if len(quotes) == 0 && a.fallback != nil {
		a.log.WithField("route", req.Route()).Info("no source quotes, using fallback set")
		return a.fallback(req)
	}
	return quotes
}
