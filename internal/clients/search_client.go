package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/cvety-kz/cvety-chat-service/internal/config"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

// SearchClient talks to the remote semantic product search service.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Product, error)
	Vectorize(ctx context.Context) error
}

// Ensure HTTPSearchClient implements SearchClient
var _ SearchClient = (*HTTPSearchClient)(nil)

// HTTPSearchClient implements SearchClient over HTTP. Requests go to the
// primary endpoint first; on any failure the same request is retried once
// against the fallback endpoint. Outbound calls are rate limited so a chatty
// session cannot hammer the search service.
type HTTPSearchClient struct {
	searchURL         string
	fallbackSearchURL string
	vectorizeURL      string
	httpClient        *http.Client
	limiter           *rate.Limiter
	logger            *logging.Logger
}

// NewHTTPSearchClient creates an HTTP-based search client.
func NewHTTPSearchClient(cfg config.SearchServiceConfig, logger *logging.Logger) *HTTPSearchClient {
	return &HTTPSearchClient{
		searchURL:         cfg.SearchURL(),
		fallbackSearchURL: cfg.FallbackSearchURL(),
		vectorizeURL:      cfg.VectorizeURL(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}
}

// Search runs one semantic query and returns the matched products ranked by
// similarity.
func (c *HTTPSearchClient) Search(ctx context.Context, query string, maxResults int) ([]models.Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("Searching products", logging.Fields{
		"query":       query,
		"max_results": maxResults,
	})

	products, err := c.search(ctx, c.searchURL, query, maxResults)
	if err == nil {
		return products, nil
	}

	c.logger.Warn("Primary search failed, trying fallback endpoint", logging.Fields{
		"query": query,
		"error": err.Error(),
	})

	products, fallbackErr := c.search(ctx, c.fallbackSearchURL, query, maxResults)
	if fallbackErr != nil {
		return nil, fmt.Errorf("search failed on both endpoints: %w", fallbackErr)
	}
	return products, nil
}

func (c *HTTPSearchClient) search(ctx context.Context, url, query string, maxResults int) ([]models.Product, error) {
	body, err := json.Marshal(models.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var result models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, fmt.Errorf("search service reported failure: %s", result.Error)
	}

	c.logger.Info("Search completed", logging.Fields{
		"query":   query,
		"results": len(result.Results),
	})

	return result.Results, nil
}

// Vectorize asks the search service to rebuild its product embeddings. Used
// at startup so the first semantic query does not pay the indexing cost.
func (c *HTTPSearchClient) Vectorize(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.vectorizeURL, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vectorize returned status %d", resp.StatusCode)
	}

	c.logger.Info("Product vectorization triggered", nil)
	return nil
}

// MockSearchClient is a mock implementation for testing.
type MockSearchClient struct {
	Results    []models.Product
	Err        error
	Queries    []string
	Vectorized int
}

func NewMockSearchClient() *MockSearchClient {
	return &MockSearchClient{}
}

func (m *MockSearchClient) Search(ctx context.Context, query string, maxResults int) ([]models.Product, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	if maxResults > 0 && len(m.Results) > maxResults {
		return m.Results[:maxResults], nil
	}
	return m.Results, nil
}

func (m *MockSearchClient) Vectorize(ctx context.Context) error {
	m.Vectorized++
	return m.Err
}
