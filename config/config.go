package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	JWT   JWT
	Redis Redis
	Kafka Kafka

	// Стоимость bcrypt; 0 — значение по умолчанию библиотеки.
	BcryptCost int
}

type DB struct {
	database.Config
}

type JWT struct {
	AccessSecret string
	Issuer       string
	Audience     string
	AccessTTL    time.Duration
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		JWT: JWT{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", log),
			Issuer:       getEnvDefault("JWT_ISSUER", "storefront"),
			Audience:     getEnvDefault("JWT_AUDIENCE", "storefront-api"),
			AccessTTL:    time.Duration(atoiDefault(os.Getenv("JWT_ACCESS_TTL_MIN"), 15)) * time.Minute,
		},
		Redis: Redis{
			Enabled:  os.Getenv("REDIS_ADDR") != "",
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		Kafka: Kafka{
			Enabled: os.Getenv("KAFKA_BROKERS") != "",
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnvDefault("KAFKA_TOPIC_ORDERS", "storefront.orders"),
		},
		BcryptCost: atoiDefault(os.Getenv("BCRYPT_COST"), 0),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
