package diagnostics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvety-kz/cvety-chat-service/internal/logging"
)

func newTestRecorder(t *testing.T) (*Recorder, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRecorder(rdb, time.Hour, prometheus.NewRegistry(), logging.New("diag-test")), mr
}

func TestLogAndStats(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "привет"})
	r.Log(ctx, "s1", EventAIResponse, AIResponsePayload{Response: "Здравствуйте!"})
	r.Log(ctx, "s2", EventCacheHit, CacheHitPayload{Key: "response_привет"})
	r.Log(ctx, "s2", EventError, ErrorPayload{Message: "boom"})

	s := r.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Sessions)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.ByType[EventUserMessage])
	assert.Equal(t, 1, s.ByType[EventCacheHit])
	assert.Zero(t, s.AvgDurationMS)
}

func TestStatsAveragesUpstreamDurations(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	r.Log(ctx, "s1", EventAPIResponse, APIResponsePayload{Endpoint: "/chat", Success: true, DurationMS: 120})
	r.Log(ctx, "s1", EventAPIResponse, APIResponsePayload{Endpoint: "/chat", Success: false, DurationMS: 480})
	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "привет"})

	assert.Equal(t, 300.0, r.Stats().AvgDurationMS)
}

func TestRecentReturnsNewest(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "first"})
	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "second"})
	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "third"})

	got := r.Recent(2)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Data.(UserMessagePayload).Message)
	assert.Equal(t, "third", got[1].Data.(UserMessagePayload).Message)
}

func TestSessionLogsPersistedToRedis(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "привет"})
	r.Log(ctx, "s1", EventFallback, FallbackPayload{Rule: "greeting"})
	r.Log(ctx, "other", EventUserMessage, UserMessagePayload{Message: "чужое"})

	entries, err := r.SessionLogs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, EventUserMessage, entries[0].Type)
	assert.Equal(t, EventFallback, entries[1].Type)
}

func TestPersistSurvivesRedisOutage(t *testing.T) {
	r, mr := newTestRecorder(t)
	mr.Close()

	// Must not panic or block the caller.
	r.Log(context.Background(), "s1", EventUserMessage, UserMessagePayload{Message: "привет"})
	assert.Equal(t, 1, r.Stats().Total)
}

func TestClear(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	r.Log(ctx, "s1", EventUserMessage, UserMessagePayload{Message: "привет"})
	r.Clear()

	s := r.Stats()
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.Sessions)
	assert.Empty(t, r.Recent(0))
}

func TestExport(t *testing.T) {
	r, _ := newTestRecorder(t)

	r.Log(context.Background(), "s1", EventUserMessage, UserMessagePayload{Message: "привет"})

	data, err := r.Export()
	require.NoError(t, err)
	assert.Contains(t, string(data), "user_message")
	assert.Contains(t, string(data), "привет")
}

func TestRingIsBounded(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	for i := 0; i < maxEntries+50; i++ {
		r.Log(ctx, "", EventAPIRequest, APIRequestPayload{Endpoint: "/chat"})
	}

	assert.Equal(t, maxEntries, r.Stats().Total)
}
