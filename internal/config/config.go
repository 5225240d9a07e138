package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Chat     ChatServiceConfig
	Search   SearchServiceConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// SessionTTL bounds session-scoped keys (cart snapshots, chat logs).
	SessionTTL time.Duration
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

type KafkaConfig struct {
	Brokers        []string
	AnalyticsTopic string
}

// ChatServiceConfig points at the upstream AI chat endpoint.
type ChatServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SearchServiceConfig points at the semantic product search endpoints.
type SearchServiceConfig struct {
	BaseURL           string
	SearchEndpoint    string
	VectorizeEndpoint string
	FallbackBaseURL   string
	DevMode           bool
	Timeout           time.Duration
	RequestsPerSecond float64
}

// SearchURL is the primary semantic search URL.
func (s SearchServiceConfig) SearchURL() string {
	return s.BaseURL + s.SearchEndpoint
}

// FallbackSearchURL is tried when the primary URL fails.
func (s SearchServiceConfig) FallbackSearchURL() string {
	return s.FallbackBaseURL + s.SearchEndpoint
}

// VectorizeURL is the fire-and-forget vector index bootstrap endpoint.
func (s SearchServiceConfig) VectorizeURL() string {
	return s.BaseURL + s.VectorizeEndpoint
}

func Load() *Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "cvety"),
			Password:     getEnvString("DB_PASSWORD", "cvety"),
			Name:         getEnvString("DB_NAME", "cvety_chat"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		},
		Redis: RedisConfig{
			Host:       getEnvString("REDIS_HOST", "localhost"),
			Port:       getEnvInt("REDIS_PORT", 6379),
			Password:   getEnvString("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			SessionTTL: time.Duration(getEnvInt("REDIS_SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:        []string{getEnvString("KAFKA_BROKER", "localhost:9092")},
			AnalyticsTopic: getEnvString("KAFKA_ANALYTICS_TOPIC", "chat-analytics"),
		},
		Chat: ChatServiceConfig{
			BaseURL: getEnvString("API_BASE_URL", "https://faq-demo.cvety.kz/api"),
			Timeout: time.Duration(getEnvInt("CHAT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Search: SearchServiceConfig{
			BaseURL:           getEnvString("API_BASE_URL", "https://faq-demo.cvety.kz/api"),
			SearchEndpoint:    getEnvString("PRODUCTS_SEARCH_ENDPOINT", "/products-search"),
			VectorizeEndpoint: getEnvString("VECTORIZE_ENDPOINT", "/vectorize-products"),
			FallbackBaseURL:   getEnvString("FALLBACK_API_URL", "http://localhost:8787/api"),
			DevMode:           getEnvBool("DEV_MODE", false),
			Timeout:           time.Duration(getEnvInt("SEARCH_TIMEOUT_SECONDS", 5)) * time.Second,
			RequestsPerSecond: getEnvFloat("SEARCH_REQUESTS_PER_SECOND", 10),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
