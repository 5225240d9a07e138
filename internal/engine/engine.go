// Package engine runs the conversation: it owns session transcripts, decides
// between cached, AI-backed and rule-based replies, and attaches product
// recommendations to the answer.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cvety-kz/cvety-chat-service/internal/cache"
	"github.com/cvety-kz/cvety-chat-service/internal/catalog"
	"github.com/cvety-kz/cvety-chat-service/internal/clients"
	"github.com/cvety-kz/cvety-chat-service/internal/diagnostics"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
	"github.com/cvety-kz/cvety-chat-service/internal/search"
)

// APIStatus reports the last observed health of the AI backend.
type APIStatus string

const (
	StatusUnknown APIStatus = "unknown"
	StatusOnline  APIStatus = "online"
	StatusOffline APIStatus = "offline"
)

// TypingPlaceholder is shown by clients while a turn is in flight.
const TypingPlaceholder = "Подбираю для вас лучшие варианты..."

const apologyMessage = "Извините, произошла ошибка. Попробуйте позже."

const (
	cannedResponseTTL = 30 * time.Minute
	aiResponseTTL     = 10 * time.Minute
	popularTTL        = time.Hour
	historyWindow     = 6
)

// cannedResponse is a pre-baked reply cached under a response_ key.
type cannedResponse struct {
	Response string
	Products []models.Product
	ShowCart bool
}

// Engine processes conversation turns. One instance serves all sessions.
type Engine struct {
	cache       *cache.Cache
	chat        clients.ChatClient
	search      *search.Adapter
	recorder    *diagnostics.Recorder
	transcripts *transcriptStore
	logger      *logging.Logger

	apiStatus atomic.Value
}

// New creates an engine.
func New(c *cache.Cache, chat clients.ChatClient, adapter *search.Adapter, recorder *diagnostics.Recorder, logger *logging.Logger) *Engine {
	e := &Engine{
		cache:       c,
		chat:        chat,
		search:      adapter,
		recorder:    recorder,
		transcripts: newTranscriptStore(),
		logger:      logger,
	}
	e.apiStatus.Store(StatusUnknown)
	return e
}

// Warmup pre-bakes canned replies for the most common queries and triggers
// remote embedding refresh so first turns answer fast.
func (e *Engine) Warmup(ctx context.Context) {
	e.search.Warmup(ctx)

	popular, _ := e.search.Popular(ctx)
	e.cache.Set("popular_products", popular, popularTTL)

	canned := []struct {
		query string
		resp  cannedResponse
	}{
		{"розы", cannedResponse{Response: "🌹 Вот наши прекрасные розы:", Products: catalog.Search("розы", 0)}},
		{"букеты", cannedResponse{Response: "🌸 Показываю букеты по вашему запросу:", Products: catalog.Top(6)}},
		{"корзина", cannedResponse{Response: "🛒 Ваша корзина:", ShowCart: true}},
	}
	for _, item := range canned {
		e.cache.Set("response_"+item.query, item.resp, cannedResponseTTL)
	}

	e.logger.Info("Engine warmed up", logging.Fields{
		"canned_responses": len(canned),
		"popular_products": len(popular),
	})
}

// APIStatus returns the health of the AI backend as observed by the most
// recent turn that reached it.
func (e *Engine) APIStatus() APIStatus {
	return e.apiStatus.Load().(APIStatus)
}

// History returns the transcript of a session, oldest first.
func (e *Engine) History(sessionID string) []models.Message {
	t := e.transcripts.get(sessionID)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history()
}

// Turn processes one user message and returns the assistant reply. Turns
// within a session run strictly one at a time. Turn only fails on invalid
// input; every downstream problem degrades to a useful reply instead.
func (e *Engine) Turn(ctx context.Context, sessionID, content string) (msg *models.Message, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("message", "message must not be empty")
	}
	if sessionID == "" {
		return nil, models.NewValidationError("session_id", "session id must not be empty")
	}

	t := e.transcripts.get(sessionID)
	t.mu.Lock()
	defer t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Turn panicked", logging.Fields{
				"session_id": sessionID,
				"panic":      fmt.Sprintf("%v", r),
			})
			e.recorder.Log(ctx, sessionID, diagnostics.EventError, diagnostics.ErrorPayload{
				Message: fmt.Sprintf("panic: %v", r),
				Where:   "engine.Turn",
			})
			m := e.appendAssistant(ctx, t, sessionID, reply{content: apologyMessage}, false)
			msg, err = &m, nil
		}
	}()

	userMsg := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
	t.append(userMsg)
	e.recorder.Log(ctx, sessionID, diagnostics.EventUserMessage, diagnostics.UserMessagePayload{
		Message: content,
	})

	lowered := strings.ToLower(content)

	// Canned replies answer instantly without touching the AI backend.
	cacheKey := "response_" + lowered
	if v, ok := e.cache.Get(cacheKey); ok {
		canned := v.(cannedResponse)
		e.recorder.Log(ctx, sessionID, diagnostics.EventCacheHit, diagnostics.CacheHitPayload{
			Key: cacheKey,
		})
		m := e.appendAssistant(ctx, t, sessionID, reply{
			content:  canned.Response,
			products: canned.Products,
			showCart: canned.ShowCart,
		}, true)
		return &m, nil
	}

	history := t.lastN(historyWindow + 1)
	if len(history) > 0 {
		// The just-appended user message travels in the request body, not
		// in the history window.
		history = history[:len(history)-1]
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
	}

	aiReply, fromCache := e.askAI(ctx, sessionID, lowered, history)
	if aiReply != "" {
		r := reply{content: aiReply}
		e.enrich(ctx, sessionID, lowered, aiReply, &r)
		m := e.appendAssistant(ctx, t, sessionID, r, fromCache)
		return &m, nil
	}

	rule := matchFallback(lowered)
	e.recorder.Log(ctx, sessionID, diagnostics.EventFallback, diagnostics.FallbackPayload{
		Rule:  rule.name,
		Query: lowered,
	})
	m := e.appendAssistant(ctx, t, sessionID, rule.build(ctx, e, lowered), false)
	return &m, nil
}

// askAI returns the AI reply for a message, consulting the short-lived api_
// cache first. An empty reply means the backend could not answer and the
// fallback rules take over.
func (e *Engine) askAI(ctx context.Context, sessionID, lowered string, history []models.HistoryEntry) (string, bool) {
	apiKey := "api_" + lowered
	if v, ok := e.cache.Get(apiKey); ok {
		e.recorder.Log(ctx, sessionID, diagnostics.EventCacheHit, diagnostics.CacheHitPayload{
			Key: apiKey,
		})
		return v.(string), true
	}

	e.recorder.Log(ctx, sessionID, diagnostics.EventAPIRequest, diagnostics.APIRequestPayload{
		Endpoint: "/chat",
		Query:    lowered,
	})

	start := time.Now()
	resp, err := e.chat.Send(ctx, &models.ChatRequest{
		Message:             lowered,
		SessionID:           sessionID,
		ConversationHistory: history,
		Timestamp:           start.UnixMilli(),
	})
	duration := time.Since(start)

	// A reply with no text cannot be shown or cached; treat it like an
	// unreachable backend.
	if err == nil && resp.Response == "" {
		err = fmt.Errorf("empty reply from chat service")
	}

	e.recorder.Log(ctx, sessionID, diagnostics.EventAPIResponse, diagnostics.APIResponsePayload{
		Endpoint:   "/chat",
		Success:    err == nil,
		DurationMS: duration.Milliseconds(),
	})

	if err != nil {
		e.apiStatus.Store(StatusOffline)
		e.recorder.Log(ctx, sessionID, diagnostics.EventError, diagnostics.ErrorPayload{
			Message: err.Error(),
			Where:   "chat_client",
		})
		return "", false
	}

	e.apiStatus.Store(StatusOnline)
	e.cache.Set(apiKey, resp.Response, aiResponseTTL)
	return resp.Response, false
}

// enrich attaches product recommendations to an AI reply when either the
// user asked about products or the AI offered to show them.
func (e *Engine) enrich(ctx context.Context, sessionID, lowered, aiReply string, r *reply) {
	loweredReply := strings.ToLower(aiReply)

	asked := containsAny(lowered, []string{"розы", "букет", "цветы", "наличии", "покажи", "ассортимент"})
	offered := containsAny(loweredReply, []string{"посмотрите", "вот наши", "показываю", "каталог"})
	if !asked && !offered {
		return
	}

	var query string
	var limit int
	switch {
	case strings.Contains(loweredReply, "розы") || strings.Contains(lowered, "розы"):
		query, limit = "красивые розы букеты", 6
	case containsAny(lowered, []string{"наличии", "ассортимент"}):
		query, limit = "букеты цветы в наличии", 8
	case strings.Contains(loweredReply, "букет") || containsAny(lowered, []string{"букет", "цветы"}):
		query, limit = "красивые букеты цветы", 6
	default:
		return
	}

	r.products, r.source = e.search.Search(ctx, query, limit)
	if r.source == search.SourceLocal {
		e.recorder.Log(ctx, sessionID, diagnostics.EventFallback, diagnostics.FallbackPayload{
			Rule:  "semantic_search_degraded",
			Query: query,
		})
	}
}

// QuickAction handles the widget's shortcut buttons without a free-text
// message.
func (e *Engine) QuickAction(ctx context.Context, sessionID, action string) (*models.Message, error) {
	if sessionID == "" {
		return nil, models.NewValidationError("session_id", "session id must not be empty")
	}

	t := e.transcripts.get(sessionID)
	t.mu.Lock()
	defer t.mu.Unlock()

	var r reply
	switch action {
	case "show_products":
		products, source := e.search.Popular(ctx)
		r = reply{content: "🌹 Вот наши популярные букеты:", products: products, source: source}
		if source == search.SourceLocal {
			e.recorder.Log(ctx, sessionID, diagnostics.EventFallback, diagnostics.FallbackPayload{
				Rule: "popular_products_degraded",
			})
		}
	case "show_cart":
		r = reply{content: "🛒 Ваша корзина:", showCart: true}
	case "checkout":
		r = reply{content: "📝 Давайте оформим ваш заказ:", showOrderForm: true}
	default:
		return nil, models.NewValidationError("action", "unknown action: "+action)
	}

	m := e.appendAssistant(ctx, t, sessionID, r, false)
	return &m, nil
}

func (e *Engine) appendAssistant(ctx context.Context, t *transcript, sessionID string, r reply, cached bool) models.Message {
	m := models.Message{
		ID:            uuid.NewString(),
		Role:          models.RoleAssistant,
		Content:       r.content,
		Timestamp:     time.Now(),
		Products:      r.products,
		ShowCart:      r.showCart,
		ShowOrderForm: r.showOrderForm,
		Cached:        cached,
	}
	t.append(m)

	e.recorder.Log(ctx, sessionID, diagnostics.EventAIResponse, diagnostics.AIResponsePayload{
		Response: r.content,
		Cached:   cached,
		Source:   string(r.source),
	})

	return m
}
