package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mbtispy/config"
	"mbtispy/internal/cache"
	"mbtispy/internal/repository"
	"mbtispy/internal/service"
	"mbtispy/internal/transport/rest"
	"mbtispy/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg := config.Load()

	// Redis connection — the session store and lock substrate
	redisAddr := cfg.RedisAddr
	if strings.HasPrefix(redisAddr, "redis://") {
		redisAddr = strings.TrimPrefix(redisAddr, "redis://")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize store layer
	sessionCache := cache.NewSessionCache(rdb, cfg.SessionTTL)
	sessionLock := cache.NewSessionLock(rdb, cfg.LockHold, cfg.LockWait)
	sessionRepo := repository.NewSessionRepo(sessionCache)

	// Initialize services
	questionSvc := service.NewQuestionService()
	gameSvc := service.NewGameService(sessionRepo, sessionLock, questionSvc)

	// MongoDB connection — optional trait archive
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		mongoCtx, mongoCancel := context.WithTimeout(ctx, 5*time.Second)
		defer mongoCancel()
		if err := mongoClient.Ping(mongoCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")

		db := mongoClient.Database("mbtispy")
		gameSvc.SetRecordRepo(repository.NewRecordRepo(db))
	} else {
		log.Println("MONGO_URI not set, trait archive disabled")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	gameSvc.SetBroadcaster(wsHub)
	log.Println("WebSocket hub started")

	// Create router with container
	container := &rest.Container{
		GameService: gameSvc,
		WSHub:       wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/sessions")
		log.Println("  POST /v1/sessions/{code}/register")
		log.Println("  GET  /v1/sessions/{code}/players")
		log.Println("  POST /v1/sessions/{code}/confirm")
		log.Println("  GET  /v1/sessions/{code}/role/{playerId}")
		log.Println("  POST /v1/sessions/{code}/vote/start")
		log.Println("  POST /v1/sessions/{code}/vote")
		log.Println("  GET  /v1/sessions/{code}/results")
		log.Println("  WS   /v1/ws/sessions/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
