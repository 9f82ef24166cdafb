package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Services ServicesConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Console  ConsoleConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type ServicesConfig struct {
	AuthURL     string
	CommerceURL string
	Timeout     time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type ConsoleConfig struct {
	SessionTTL      time.Duration
	RefreshInterval time.Duration
	DefaultPageSize int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	timeoutSecs, _ := strconv.Atoi(getEnv("SERVICE_TIMEOUT_SECONDS", "10"))
	sessionTTLHours, _ := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "48"))
	refreshSecs, _ := strconv.Atoi(getEnv("CACHE_REFRESH_SECONDS", "0"))
	pageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "5"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Services: ServicesConfig{
			AuthURL:     getEnv("AUTH_SERVICE_URL", "http://localhost:8081"),
			CommerceURL: getEnv("COMMERCE_SERVICE_URL", "http://localhost:8082"),
			Timeout:     time.Duration(timeoutSecs) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Enabled: getEnv("KAFKA_ENABLED", "false") == "true",
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC_AUDIT", "console-audit"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Console: ConsoleConfig{
			SessionTTL:      time.Duration(sessionTTLHours) * time.Hour,
			RefreshInterval: time.Duration(refreshSecs) * time.Second,
			DefaultPageSize: pageSize,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, auth=%s, commerce=%s",
		cfg.Server.Env, cfg.Server.Port, cfg.Services.AuthURL, cfg.Services.CommerceURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
