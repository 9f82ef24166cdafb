package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commerce-console/config"
	"commerce-console/internal/api"
	"commerce-console/internal/broker"
	"commerce-console/internal/client"
	"commerce-console/internal/orchestrator"
	"commerce-console/internal/session"
	"commerce-console/internal/util"
	"commerce-console/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting commerce console")

	tp, err := util.InitTracer("commerce-console", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var sessionStore session.Store
	if cfg.Redis.Enabled {
		redisStore, err := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		log.Println("Redis session store connected")
	} else {
		sessionStore = session.NewMemoryStore()
		log.Println("Using in-memory session store")
	}
	sessions := session.NewManager(sessionStore, cfg.Console.SessionTTL)

	var audit *broker.AuditPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		audit = broker.NewAuditPublisher(producer)
		log.Println("Kafka audit producer initialized")
	}

	hc := &http.Client{Timeout: cfg.Services.Timeout}
	console := orchestrator.New(
		client.NewCatalog(cfg.Services.CommerceURL, hc),
		client.NewGroupBuys(cfg.Services.CommerceURL, hc),
		client.NewOrders(cfg.Services.CommerceURL, hc),
		client.NewUsers(cfg.Services.AuthURL, hc),
		sessions,
		audit,
		cfg.Console.DefaultPageSize,
	)

	ctx := context.Background()
	if err := console.LoadAll(ctx); err != nil {
		log.Printf("Initial load incomplete: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	refresher := worker.NewRefresher(console, cfg.Console.RefreshInterval)
	go func() {
		if err := refresher.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Cache refresher error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(console)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	refresher.Stop()

	log.Println("Server exited")
}
