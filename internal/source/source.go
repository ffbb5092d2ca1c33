package source

import (
	"context"

	"skyrate/internal/quote"
)

// Client is a single pricing source. Implementations must be safe for
// concurrent use: the aggregator fans out to all clients at once.
type Client interface {
	Name() string
	Category() quote.Source
	Quote(ctx context.Context, req quote.Request) (quote.Quote, error)
}
