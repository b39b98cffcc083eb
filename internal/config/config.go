package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	RabbitURL   string
	RedisAddr   string // empty means the in-memory rate-limit store
	JWTSecret   string
	Port        string

	GuestOrderRetentionDays int
}

func Load() *Config {
	// Local development reads a .env file; deployed environments set real
	// env vars and the load quietly does nothing.
	_ = godotenv.Load()

	return &Config{
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:             getEnv("MONGO_DB_NAME", "sgvmart"),
		RabbitURL:               getEnv("RABBIT_URL", "amqp://localhost"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		JWTSecret:               getEnv("JWT_SECRET", "dev-secret-change-me"),
		Port:                    getEnv("PORT", "8080"),
		GuestOrderRetentionDays: getEnvInt("GUEST_ORDER_RETENTION_DAYS", 90),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
