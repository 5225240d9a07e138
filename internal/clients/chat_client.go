package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cvety-kz/cvety-chat-service/internal/config"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

// ChatClient talks to the remote AI chat backend.
type ChatClient interface {
	Send(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// Ensure HTTPChatClient implements ChatClient
var _ ChatClient = (*HTTPChatClient)(nil)

// HTTPChatClient implements ChatClient over HTTP.
type HTTPChatClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPChatClient creates an HTTP-based chat client. The configured timeout
// bounds the whole round trip; a slow upstream surfaces as a client error the
// caller degrades from, never as a hung turn.
func NewHTTPChatClient(cfg config.ChatServiceConfig, logger *logging.Logger) *HTTPChatClient {
	return &HTTPChatClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Send posts one user message with its trailing conversation history and
// returns the AI reply.
func (c *HTTPChatClient) Send(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	c.logger.Debug("Sending chat request", logging.Fields{
		"session_id":   req.SessionID,
		"history_size": len(req.ConversationHistory),
	})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Chat request failed", logging.Fields{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Chat request returned error", logging.Fields{
			"session_id":  req.SessionID,
			"status_code": resp.StatusCode,
		})
		return nil, fmt.Errorf("chat service returned status %d", resp.StatusCode)
	}

	var result models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, fmt.Errorf("chat service reported failure")
	}
	if result.Response == "" {
		return nil, fmt.Errorf("chat service returned an empty reply")
	}

	c.logger.Info("Chat response received", logging.Fields{
		"session_id":      req.SessionID,
		"response_length": len(result.Response),
	})

	return &result, nil
}

// MockChatClient is a mock implementation for testing.
type MockChatClient struct {
	Response *models.ChatResponse
	Err      error
	Requests []*models.ChatRequest
}

func NewMockChatClient() *MockChatClient {
	return &MockChatClient{}
}

func (m *MockChatClient) Send(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		return m.Response, nil
	}
	return &models.ChatResponse{Success: true, Response: "Здравствуйте! Чем могу помочь?"}, nil
}
