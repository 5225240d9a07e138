package models

import "time"

// MessageRole distinguishes user input from assistant replies.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry in a conversation transcript. The transcript is
// append-only; the only mutation ever applied is the removal of a transient
// typing placeholder when the real reply arrives.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`

	Products      []Product `json:"products,omitempty"`
	ShowCart      bool      `json:"showCart,omitempty"`
	ShowOrderForm bool      `json:"showOrderForm,omitempty"`
	Typing        bool      `json:"typing,omitempty"`
	Cached        bool      `json:"cached,omitempty"`
}

// HistoryEntry is the reduced transcript form sent to the AI chat service as
// conversation context.
type HistoryEntry struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is the body of POST /api/chat on the upstream AI service.
type ChatRequest struct {
	Message             string         `json:"message"`
	SessionID           string         `json:"sessionId"`
	ConversationHistory []HistoryEntry `json:"conversationHistory"`
	Timestamp           int64          `json:"timestamp"`
}

// ChatResponse is the upstream AI service reply. The service is treated as
// untrusted: a missing Success or empty Response is a failure, not a parse
// error.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
}

// SearchRequest is the body of the semantic product search endpoint.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

// SearchResponse is the semantic product search reply.
type SearchResponse struct {
	Success        bool      `json:"success"`
	Query          string    `json:"query"`
	Results        []Product `json:"results"`
	Total          int       `json:"total"`
	ProcessingTime int       `json:"processingTime"`
	Error          string    `json:"error,omitempty"`
}
