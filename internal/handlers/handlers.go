// Package handlers holds the HTTP layer of the chat service.
package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cvety-kz/cvety-chat-service/internal/cart"
	"github.com/cvety-kz/cvety-chat-service/internal/config"
	"github.com/cvety-kz/cvety-chat-service/internal/diagnostics"
	"github.com/cvety-kz/cvety-chat-service/internal/engine"
	"github.com/cvety-kz/cvety-chat-service/internal/events"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
	"github.com/cvety-kz/cvety-chat-service/internal/service"
)

// Handlers holds all HTTP handlers for the chat service.
type Handlers struct {
	engine    *engine.Engine
	carts     *cart.Store
	orders    *service.OrderService
	recorder  *diagnostics.Recorder
	publisher events.AnalyticsPublisher
	config    *config.Config
	logger    *logging.Logger

	rdb *redis.Client
	db  *sql.DB
}

// NewHandlers creates a handlers instance. rdb and db are only used for
// readiness checks and may be nil in tests.
func NewHandlers(
	eng *engine.Engine,
	carts *cart.Store,
	orders *service.OrderService,
	recorder *diagnostics.Recorder,
	publisher events.AnalyticsPublisher,
	cfg *config.Config,
	rdb *redis.Client,
	db *sql.DB,
) *Handlers {
	return &Handlers{
		engine:    eng,
		carts:     carts,
		orders:    orders,
		recorder:  recorder,
		publisher: publisher,
		config:    cfg,
		logger:    logging.New("handlers"),
		rdb:       rdb,
		db:        db,
	}
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
