package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvety-kz/cvety-chat-service/internal/cache"
	"github.com/cvety-kz/cvety-chat-service/internal/clients"
	"github.com/cvety-kz/cvety-chat-service/internal/diagnostics"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
	"github.com/cvety-kz/cvety-chat-service/internal/search"
)

type engineDeps struct {
	chat     *clients.MockChatClient
	searchCl *clients.MockSearchClient
	cache    *cache.Cache
	recorder *diagnostics.Recorder
}

func newTestEngine(t *testing.T) (*Engine, *engineDeps) {
	t.Helper()

	deps := &engineDeps{
		chat:     clients.NewMockChatClient(),
		searchCl: clients.NewMockSearchClient(),
		cache:    cache.New(),
	}
	logger := logging.New("engine-test")
	deps.recorder = diagnostics.NewRecorder(nil, 0, prometheus.NewRegistry(), logger)

	adapter := search.NewAdapter(deps.searchCl, false, logger)
	return New(deps.cache, deps.chat, adapter, deps.recorder, logger), deps
}

func TestTurnRejectsEmptyMessage(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Turn(context.Background(), "s1", "   ")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTurnUsesAIReply(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "У нас большой выбор!"}

	msg, err := e.Turn(context.Background(), "s1", "Что посоветуете?")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, msg.Role)
	assert.Equal(t, "У нас большой выбор!", msg.Content)
	assert.False(t, msg.Cached)
	assert.Equal(t, StatusOnline, e.APIStatus())
}

func TestTurnCachesAIReply(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "Ответ"}

	_, err := e.Turn(context.Background(), "s1", "необычный вопрос")
	require.NoError(t, err)
	require.Len(t, deps.chat.Requests, 1)

	msg, err := e.Turn(context.Background(), "s1", "Необычный вопрос")
	require.NoError(t, err)

	assert.Len(t, deps.chat.Requests, 1, "second identical turn must answer from cache")
	assert.True(t, msg.Cached)
	assert.Equal(t, "Ответ", msg.Content)
}

func TestTurnEnrichesWithProducts(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "Вот наши лучшие варианты"}
	deps.searchCl.Results = []models.Product{{ID: "1", Name: "Розы", Price: 15000}}

	msg, err := e.Turn(context.Background(), "s1", "покажи букет")
	require.NoError(t, err)

	require.NotEmpty(t, msg.Products)
	assert.Equal(t, []string{"красивые букеты цветы"}, deps.searchCl.Queries)
}

func TestTurnTreatsEmptyAIReplyAsFailure(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: ""}

	msg, err := e.Turn(context.Background(), "s1", "странный вопрос")
	require.NoError(t, err)

	assert.Contains(t, msg.Content, "AI сервис временно недоступен")
	assert.Equal(t, StatusOffline, e.APIStatus())
	assert.False(t, deps.cache.Has("api_странный вопрос"), "blank reply must not be cached")
}

func TestTurnEnrichesWhenReplyOffersProducts(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "Показываю наши букеты дня"}
	deps.searchCl.Results = []models.Product{{ID: "2", Name: "Пионы", Price: 18500}}

	// The user's own text carries no product keyword; the offer in the
	// reply alone must trigger the search.
	msg, err := e.Turn(context.Background(), "s1", "что посоветуете на годовщину?")
	require.NoError(t, err)

	require.NotEmpty(t, msg.Products)
	assert.Equal(t, []string{"красивые букеты цветы"}, deps.searchCl.Queries)
}

func TestTurnSkipsEnrichmentForPlainReply(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "Мы работаем с 9 до 21"}

	msg, err := e.Turn(context.Background(), "s1", "какой у вас график?")
	require.NoError(t, err)

	assert.Empty(t, msg.Products)
	assert.Empty(t, deps.searchCl.Queries)
}

func TestTurnFallsBackWhenAIDown(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Err = errors.New("dial tcp: connection refused")
	deps.searchCl.Err = errors.New("search down too")

	msg, err := e.Turn(context.Background(), "s1", "Покажи розы")
	require.NoError(t, err)

	assert.Equal(t, "🌹 Вот наши прекрасные розы:", msg.Content)
	assert.NotEmpty(t, msg.Products, "catalog must supply products when everything is down")
	assert.Equal(t, StatusOffline, e.APIStatus())
}

func TestTurnFallbackOrderFormFlag(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Err = errors.New("down")

	msg, err := e.Turn(context.Background(), "s1", "хочу оформить заказ")
	require.NoError(t, err)

	// "заказ" wins over the terminal rule and requests the order form.
	assert.True(t, msg.ShowOrderForm)
	assert.Equal(t, "📝 Давайте оформим ваш заказ:", msg.Content)
}

func TestTurnFallbackDefault(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Err = errors.New("down")

	msg, err := e.Turn(context.Background(), "s1", "абракадабра")
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "AI сервис временно недоступен")
}

func TestCannedResponseShortCircuitsAI(t *testing.T) {
	e, deps := newTestEngine(t)
	e.Warmup(context.Background())

	msg, err := e.Turn(context.Background(), "s1", "Розы")
	require.NoError(t, err)

	assert.True(t, msg.Cached)
	assert.Equal(t, "🌹 Вот наши прекрасные розы:", msg.Content)
	assert.NotEmpty(t, msg.Products)
	assert.Empty(t, deps.chat.Requests, "canned reply must not reach the AI backend")
}

func TestTurnHistoryWindow(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "ок"}

	ctx := context.Background()
	for _, m := range []string{"q1", "q2", "q3", "q4"} {
		_, err := e.Turn(ctx, "s1", m)
		require.NoError(t, err)
	}

	last := deps.chat.Requests[len(deps.chat.Requests)-1]
	require.Len(t, last.ConversationHistory, 6)
	// Window holds the conversation before the current message.
	assert.Equal(t, "q1", last.ConversationHistory[0].Content)
	assert.Equal(t, "ок", last.ConversationHistory[5].Content)
}

func TestHistoryRecordsBothSides(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.chat.Response = &models.ChatResponse{Success: true, Response: "Здравствуйте!"}

	_, err := e.Turn(context.Background(), "s1", "привет")
	require.NoError(t, err)

	history := e.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)

	assert.Empty(t, e.History("s2"), "sessions must be isolated")
}

func TestQuickActions(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.searchCl.Results = []models.Product{{ID: "1"}, {ID: "4"}}

	msg, err := e.QuickAction(context.Background(), "s1", "show_products")
	require.NoError(t, err)
	assert.Equal(t, "🌹 Вот наши популярные букеты:", msg.Content)
	assert.Len(t, msg.Products, 2)

	msg, err = e.QuickAction(context.Background(), "s1", "show_cart")
	require.NoError(t, err)
	assert.True(t, msg.ShowCart)

	msg, err = e.QuickAction(context.Background(), "s1", "checkout")
	require.NoError(t, err)
	assert.True(t, msg.ShowOrderForm)

	_, err = e.QuickAction(context.Background(), "s1", "fly_to_moon")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}
