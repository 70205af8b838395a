package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/cache"
	"storefront-service/internal/database"
	"storefront-service/internal/hashing"
	"storefront-service/internal/logger"
	"storefront-service/internal/producer"
	"storefront-service/internal/repository"
	"storefront-service/internal/router"
	"storefront-service/internal/service"
	"storefront-service/internal/token"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	tokens := token.NewHSProvider(cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience)
	hasher := hashing.NewBcrypt(cfg.BcryptCost)

	// Redis не обязателен: без него логин работает без rate-limit и blacklist
	var cacheClient service.CacheClient
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer rc.Close()
		cacheClient = rc
	}

	// Kafka тоже опциональна: nil шины отключает публикацию событий
	var bus service.EventBus
	if cfg.Kafka.Enabled {
		prod := producer.NewOrderProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer prod.Close()
		bus = prod
	}

	authSvc := service.NewAuthService(repos.Users, hasher, tokens, cacheClient, cfg.JWT.AccessTTL, log)
	catalogSvc := service.NewCatalogService(repos)
	orderSvc := service.NewOrderService(repos, bus, log)

	r := router.Router(router.Deps{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Orders:  orderSvc,
		Tokens:  tokens,
		Cache:   cacheClient,
		Log:     log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Запуск HTTP-сервера", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Остановка HTTP-сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	log.Info("Сервер остановлен")
}
