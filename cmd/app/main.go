package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kazwonder/tourbooking/config"
	"github.com/kazwonder/tourbooking/internal/bootstrap"
	"github.com/kazwonder/tourbooking/internal/cache"
	"github.com/kazwonder/tourbooking/internal/kafka"
	"github.com/kazwonder/tourbooking/internal/repository"
	"github.com/kazwonder/tourbooking/internal/service/auth"
	"github.com/kazwonder/tourbooking/internal/service/crm"
	"github.com/kazwonder/tourbooking/internal/service/orders"
	"github.com/kazwonder/tourbooking/internal/service/reviews"
	"github.com/kazwonder/tourbooking/internal/service/tours"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.TourCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	tourRepo := repository.NewTourRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	crmRepo := repository.NewCRMRepository(pool)

	reviewService := reviews.NewReviewService(reviewRepo)
	tourService := tours.NewTourService(tourRepo, redisCache, reviewService)
	orderService := orders.NewOrderService(orderRepo, tourRepo, redisCache, producer, cfg.Kafka.NotificationsTopic)
	authService := auth.NewAuthService(userRepo, producer, cfg.Kafka.NotificationsTopic, cfg.JWT, cfg.App)
	crmService := crm.NewCRMService(
		crmRepo,
		producer,
		cfg.Kafka.NotificationsTopic,
		cfg.SMTP.Admin,
		time.Duration(cfg.App.SubscribeCooldown)*time.Second,
	)

	services := bootstrap.Services{
		Tours:   tourService,
		Reviews: reviewService,
		Orders:  orderService,
		Auth:    authService,
		CRM:     crmService,
	}

	if err := bootstrap.Run(ctx, cfg, services); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
