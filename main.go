package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appconfig "prepdeck/config"
	"prepdeck/internal/cache"
	"prepdeck/internal/config"
	"prepdeck/internal/metrics"
	"prepdeck/internal/repository"
	"prepdeck/internal/service"
	"prepdeck/internal/transport/rest"
	"prepdeck/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := appconfig.Load()

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// MongoDB connection
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal(err)
	}

	log.Println("Connected to MongoDB and Redis")

	sessionRepo, err := repository.NewSessionRepo(ctx, client, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	sessionCache := cache.NewSessionCache(rdb)

	aiCfg := config.DefaultAIConfig()
	if !aiCfg.IsEnabled() {
		log.Println("Warning: GEMINI_API_KEY not set, using local question bank and heuristic evaluator")
	}

	m := metrics.NewMetrics()
	reportSvc := service.NewReportService(policy)
	interviewSvc := service.NewInterviewService(
		sessionRepo,
		sessionCache,
		service.NewGeneratorService(aiCfg),
		service.NewEvaluatorService(aiCfg),
		nil,
		reportSvc,
		policy,
		m,
	)

	hub := ws.NewHub()
	interviewSvc.SetBroadcaster(hub)

	router := rest.NewRouter(&rest.Container{
		AuthService:      service.NewAuthService(cfg.JWTSecret),
		InterviewService: interviewSvc,
		Metrics:          m,
		WSHub:            hub,
	})

	log.Printf("Server starting on :%s\n", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, router))
}
