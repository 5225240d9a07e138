// Package search selects between remote semantic product search and the
// local catalog. Lookups degrade instead of failing: when the remote service
// is down the adapter answers from the catalog and reports the source so the
// caller can record the downgrade.
package search

import (
	"context"

	"github.com/cvety-kz/cvety-chat-service/internal/catalog"
	"github.com/cvety-kz/cvety-chat-service/internal/clients"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

// Source identifies where a result set came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

const popularQuery = "популярные букеты розы"

// Adapter is the product lookup facade used by the conversation engine.
type Adapter struct {
	client  clients.SearchClient
	devMode bool
	logger  *logging.Logger
}

// NewAdapter creates a search adapter. In dev mode every lookup answers from
// the local catalog and the remote service is never contacted.
func NewAdapter(client clients.SearchClient, devMode bool, logger *logging.Logger) *Adapter {
	return &Adapter{
		client:  client,
		devMode: devMode,
		logger:  logger,
	}
}

// Search returns products for a free-text query. Remote results win when the
// service answers; any remote failure downgrades to a case-insensitive
// substring match over the catalog. Search never returns an error.
func (a *Adapter) Search(ctx context.Context, query string, maxResults int) ([]models.Product, Source) {
	if a.devMode {
		return catalog.Search(query, maxResults), SourceLocal
	}

	products, err := a.client.Search(ctx, query, maxResults)
	if err != nil {
		a.logger.Warn("Remote search unavailable, answering from catalog", logging.Fields{
			"query": query,
			"error": err.Error(),
		})
		return catalog.Search(query, maxResults), SourceLocal
	}

	return products, SourceRemote
}

// Popular returns the storefront's popular products. An empty or failed
// remote answer falls back to the catalog's popular flags.
func (a *Adapter) Popular(ctx context.Context) ([]models.Product, Source) {
	if a.devMode {
		return catalog.Popular(), SourceLocal
	}

	products, err := a.client.Search(ctx, popularQuery, 4)
	if err != nil || len(products) == 0 {
		return catalog.Popular(), SourceLocal
	}

	return products, SourceRemote
}

// Warmup asks the remote service to rebuild its embeddings. Failures are
// logged and swallowed; the service starts either way.
func (a *Adapter) Warmup(ctx context.Context) {
	if a.devMode {
		return
	}

	if err := a.client.Vectorize(ctx); err != nil {
		a.logger.Warn("Product vectorization failed", logging.Fields{
			"error": err.Error(),
		})
	}
}
