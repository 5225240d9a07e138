package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/cvety-kz/cvety-chat-service/internal/cache"
	"github.com/cvety-kz/cvety-chat-service/internal/cart"
	"github.com/cvety-kz/cvety-chat-service/internal/clients"
	"github.com/cvety-kz/cvety-chat-service/internal/config"
	"github.com/cvety-kz/cvety-chat-service/internal/diagnostics"
	"github.com/cvety-kz/cvety-chat-service/internal/engine"
	"github.com/cvety-kz/cvety-chat-service/internal/events"
	"github.com/cvety-kz/cvety-chat-service/internal/handlers"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/repository"
	"github.com/cvety-kz/cvety-chat-service/internal/search"
	"github.com/cvety-kz/cvety-chat-service/internal/server"
	"github.com/cvety-kz/cvety-chat-service/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New("cvety-chat-service")

	logger.Info("Starting cvety-chat-service", logging.Fields{
		"port":     cfg.Server.Port,
		"dev_mode": cfg.Search.DevMode,
	})

	db, err := repository.Connect(cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorder := diagnostics.NewRecorder(rdb, cfg.Redis.SessionTTL, registry, logging.New("diagnostics"))

	chatClient := clients.NewHTTPChatClient(cfg.Chat, logging.New("chat-client"))
	searchClient := clients.NewHTTPSearchClient(cfg.Search, logging.New("search-client"))
	adapter := search.NewAdapter(searchClient, cfg.Search.DevMode, logging.New("search"))

	responseCache := cache.New()
	eng := engine.New(responseCache, chatClient, adapter, recorder, logging.New("engine"))

	warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), 30*time.Second)
	eng.Warmup(warmupCtx)
	cancelWarmup()

	carts := cart.NewStore(rdb, cfg.Redis.SessionTTL, logging.New("cart"))
	orderRepo := repository.NewPostgresOrderRepository(db, logging.New("repository"))

	publisher := events.NewKafkaPublisher(cfg.Kafka, logging.New("events"))
	defer publisher.Close()

	orderService := service.NewOrderService(carts, orderRepo, publisher, logging.New("orders"))

	h := handlers.NewHandlers(eng, carts, orderService, recorder, publisher, cfg, rdb, db)
	srv := server.New(h, cfg, registry)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", logging.Fields{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited", nil)
}
