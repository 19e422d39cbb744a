package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken       string
	ChatID              int64
	AdminChatID         int64
	GitHubWebhookSecret string
	MongoDBURI          string
	DatabaseName        string
	Port                string
	LogLevel            string
}

func Load() *Config {
	_ = godotenv.Load()

	required := []string{
		"TELEGRAM_TOKEN",
		"TELEGRAM_CHAT_ID",
		"TELEGRAM_ADMIN_CHAT_ID",
		"GITHUB_WEBHOOK_SECRET",
		"MONGODB_URI",
	}

	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		log.Fatalf("Missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return &Config{
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		ChatID:              getEnvInt64("TELEGRAM_CHAT_ID"),
		AdminChatID:         getEnvInt64("TELEGRAM_ADMIN_CHAT_ID"),
		GitHubWebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		DatabaseName:        getEnv("DATABASE_NAME", "github_bot"),
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer: %v", key, err)
	}
	return value
}
