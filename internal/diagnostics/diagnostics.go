// Package diagnostics records conversation events for debugging and support.
// Events are held in a bounded in-memory ring, mirrored per-session into
// Redis on a best-effort basis, and counted in Prometheus.
package diagnostics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/cvety-kz/cvety-chat-service/internal/logging"
)

// EventType classifies a diagnostic event.
type EventType string

const (
	EventUserMessage EventType = "user_message"
	EventAIResponse  EventType = "ai_response"
	EventAPIRequest  EventType = "api_request"
	EventAPIResponse EventType = "api_response"
	EventError       EventType = "error"
	EventCacheHit    EventType = "cache_hit"
	EventFallback    EventType = "fallback"
)

// Payload types, one per event kind. Entry.Data holds exactly one of these.

type UserMessagePayload struct {
	Message string `json:"message"`
}

type AIResponsePayload struct {
	Response string `json:"response"`
	Cached   bool   `json:"cached"`
	Source   string `json:"source,omitempty"`
}

type APIRequestPayload struct {
	Endpoint string `json:"endpoint"`
	Query    string `json:"query,omitempty"`
}

type APIResponsePayload struct {
	Endpoint   string `json:"endpoint"`
	Success    bool   `json:"success"`
	DurationMS int64  `json:"duration_ms"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Where   string `json:"where,omitempty"`
}

type CacheHitPayload struct {
	Key string `json:"key"`
}

type FallbackPayload struct {
	Rule  string `json:"rule"`
	Query string `json:"query,omitempty"`
}

// Entry is one recorded event.
type Entry struct {
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
}

// Stats summarizes everything recorded since startup or the last clear.
type Stats struct {
	Total    int               `json:"total"`
	ByType   map[EventType]int `json:"by_type"`
	Sessions int               `json:"sessions"`
	Errors   int               `json:"errors"`

	// AvgDurationMS averages over entries that carry a duration, which is
	// upstream API responses.
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

const (
	maxEntries        = 1000
	sessionLogsPrefix = "chat_logs_"
	sessionLogsCap    = 100
)

// Recorder collects diagnostic events. All methods are safe for concurrent
// use.
type Recorder struct {
	mu       sync.RWMutex
	entries  []Entry
	sessions map[string]struct{}

	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger

	events   *prometheus.CounterVec
	upstream prometheus.Histogram
}

// NewRecorder creates a recorder. rdb may be nil, which disables the Redis
// mirror. Metrics register on reg.
func NewRecorder(rdb *redis.Client, ttl time.Duration, reg prometheus.Registerer, logger *logging.Logger) *Recorder {
	r := &Recorder{
		sessions: make(map[string]struct{}),
		rdb:      rdb,
		ttl:      ttl,
		logger:   logger,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_events_total",
			Help: "Diagnostic events recorded, by type.",
		}, []string{"type"}),
		upstream: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_upstream_duration_seconds",
			Help:    "Latency of upstream chat and search calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(r.events, r.upstream)
	}

	return r
}

// Log records one event.
func (r *Recorder) Log(ctx context.Context, sessionID string, t EventType, data interface{}) {
	entry := Entry{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Type:      t,
		Data:      data,
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	if len(r.entries) > maxEntries {
		r.entries = r.entries[len(r.entries)-maxEntries:]
	}
	if sessionID != "" {
		r.sessions[sessionID] = struct{}{}
	}
	r.mu.Unlock()

	r.events.WithLabelValues(string(t)).Inc()
	if p, ok := data.(APIResponsePayload); ok {
		r.upstream.Observe(float64(p.DurationMS) / 1000)
	}

	r.persist(ctx, sessionID, entry)
}

// persist mirrors the entry into the session's Redis log. Failures are
// logged and dropped; diagnostics must never affect the conversation.
func (r *Recorder) persist(ctx context.Context, sessionID string, entry Entry) {
	if r.rdb == nil || sessionID == "" {
		return
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	key := sessionLogsPrefix + sessionID
	pipe := r.rdb.Pipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, -sessionLogsCap, -1)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("Failed to persist diagnostic entry", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// Recent returns up to n most recent entries, newest last.
func (r *Recorder) Recent(n int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}

	out := make([]Entry, n)
	copy(out, r.entries[len(r.entries)-n:])
	return out
}

// SessionLogs loads the persisted log for one session from Redis.
func (r *Recorder) SessionLogs(ctx context.Context, sessionID string) ([]Entry, error) {
	if r.rdb == nil {
		return nil, nil
	}

	raw, err := r.rdb.LRange(ctx, sessionLogsPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Stats computes counts over the in-memory ring.
func (r *Recorder) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Total:    len(r.entries),
		ByType:   make(map[EventType]int),
		Sessions: len(r.sessions),
	}
	var durationSum int64
	var durationCount int
	for _, e := range r.entries {
		s.ByType[e.Type]++
		if e.Type == EventError {
			s.Errors++
		}
		if p, ok := e.Data.(APIResponsePayload); ok {
			durationSum += p.DurationMS
			durationCount++
		}
	}
	if durationCount > 0 {
		s.AvgDurationMS = float64(durationSum) / float64(durationCount)
	}
	return s
}

// Export serializes the in-memory ring as JSON for download.
func (r *Recorder) Export() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return json.MarshalIndent(r.entries, "", "  ")
}

// Clear drops the in-memory ring and session set. Redis mirrors expire on
// their own.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.sessions = make(map[string]struct{})
}
