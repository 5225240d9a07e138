// Package server wires the HTTP routes and owns the listener lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cvety-kz/cvety-chat-service/internal/config"
	"github.com/cvety-kz/cvety-chat-service/internal/handlers"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	srv      *http.Server
}

// New creates the HTTP server. The metrics registry is exposed on /metrics.
func New(h *handlers.Handlers, cfg *config.Config, registry *prometheus.Registry) *Server {
	router := gin.Default()

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes(registry)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(registry *prometheus.Registry) {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		sessions := api.Group("/sessions/:id")
		{
			sessions.POST("/messages", s.handlers.PostMessage)
			sessions.GET("/messages", s.handlers.GetMessages)
			sessions.POST("/actions", s.handlers.PostAction)

			sessions.GET("/cart", s.handlers.GetCart)
			sessions.DELETE("/cart", s.handlers.ClearCart)
			sessions.POST("/cart/items", s.handlers.AddCartItem)
			sessions.PUT("/cart/items/:productId", s.handlers.UpdateCartItem)
			sessions.DELETE("/cart/items/:productId", s.handlers.RemoveCartItem)

			sessions.POST("/orders", s.handlers.SubmitOrder)
		}

		api.GET("/orders", s.handlers.ListOrders)
		api.GET("/orders/:id", s.handlers.GetOrder)
		api.PATCH("/orders/:id/status", s.handlers.UpdateOrderStatus)

		admin := api.Group("/admin")
		{
			admin.GET("/stats", s.handlers.Stats)
			admin.GET("/logs", s.handlers.RecentLogs)
			admin.GET("/logs/export", s.handlers.ExportLogs)
			admin.GET("/logs/sessions/:id", s.handlers.SessionLogs)
			admin.DELETE("/logs", s.handlers.ClearLogs)
		}
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the listener until Shutdown is called.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
