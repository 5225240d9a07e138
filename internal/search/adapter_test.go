package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvety-kz/cvety-chat-service/internal/clients"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

func TestSearchPrefersRemote(t *testing.T) {
	client := clients.NewMockSearchClient()
	client.Results = []models.Product{{ID: "42", Name: "Пионы", Price: 20000, Similarity: 0.88}}
	a := NewAdapter(client, false, logging.New("test"))

	products, source := a.Search(context.Background(), "пионы", 6)

	assert.Equal(t, SourceRemote, source)
	assert.Len(t, products, 1)
	assert.Equal(t, "42", products[0].ID)
}

func TestSearchDegradesToCatalog(t *testing.T) {
	client := clients.NewMockSearchClient()
	client.Err = errors.New("connection refused")
	a := NewAdapter(client, false, logging.New("test"))

	products, source := a.Search(context.Background(), "розы", 6)

	assert.Equal(t, SourceLocal, source)
	assert.NotEmpty(t, products, "catalog must answer when remote search is down")
	for _, p := range products {
		assert.Contains(t, p.Category, "Розы")
	}
}

func TestSearchDevModeSkipsRemote(t *testing.T) {
	client := clients.NewMockSearchClient()
	a := NewAdapter(client, true, logging.New("test"))

	_, source := a.Search(context.Background(), "розы", 6)

	assert.Equal(t, SourceLocal, source)
	assert.Empty(t, client.Queries, "dev mode must not contact the remote service")
}

func TestSearchRemoteEmptyStaysRemote(t *testing.T) {
	client := clients.NewMockSearchClient()
	a := NewAdapter(client, false, logging.New("test"))

	products, source := a.Search(context.Background(), "кактус", 6)

	assert.Equal(t, SourceRemote, source)
	assert.Empty(t, products)
}

func TestPopularRemote(t *testing.T) {
	client := clients.NewMockSearchClient()
	client.Results = []models.Product{{ID: "1"}, {ID: "4"}}
	a := NewAdapter(client, false, logging.New("test"))

	products, source := a.Popular(context.Background())

	assert.Equal(t, SourceRemote, source)
	assert.Len(t, products, 2)
	assert.Equal(t, []string{"популярные букеты розы"}, client.Queries)
}

func TestPopularFallsBackOnEmptyRemote(t *testing.T) {
	client := clients.NewMockSearchClient()
	a := NewAdapter(client, false, logging.New("test"))

	products, source := a.Popular(context.Background())

	assert.Equal(t, SourceLocal, source)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.True(t, p.IsPopular)
	}
}

func TestPopularFallsBackOnError(t *testing.T) {
	client := clients.NewMockSearchClient()
	client.Err = errors.New("timeout")
	a := NewAdapter(client, false, logging.New("test"))

	_, source := a.Popular(context.Background())

	assert.Equal(t, SourceLocal, source)
}

func TestWarmup(t *testing.T) {
	client := clients.NewMockSearchClient()
	a := NewAdapter(client, false, logging.New("test"))

	a.Warmup(context.Background())
	assert.Equal(t, 1, client.Vectorized)

	dev := NewAdapter(client, true, logging.New("test"))
	dev.Warmup(context.Background())
	assert.Equal(t, 1, client.Vectorized, "dev mode must skip vectorization")
}
