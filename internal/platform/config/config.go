package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr             string
	LogLevel         string
	JWT              JWTConfig
	Database         DatabaseConfig
	Redis            RedisConfig
	Kafka            KafkaConfig
	Storage          StorageConfig
	PrincipalCultivo string
	RequestTimeout   time.Duration
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// DatabaseConfig configures the Postgres pool. An empty URL runs the service on in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the audit stream client. An empty URL disables it.
type RedisConfig struct {
	URL          string
	Stream       string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit topic producer. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// StorageConfig configures the evidence object store. An empty endpoint uses in-memory storage.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FromEnv builds a Server config from environment variables, loading a local
// .env file first when one exists.
func FromEnv() Server {
	_ = godotenv.Load()

	return Server{
		Addr:     getEnv("AGROCERT_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		JWT: JWTConfig{
			// Use a default for development - should be overridden in production
			SigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     getEnv("JWT_ISSUER", "agrocert-auth"),
			Audience:   getEnv("JWT_AUDIENCE", "agrocert-api"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Stream:       getEnv("REDIS_AUDIT_STREAM", "agrocert:audit"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "agrocert.audit"),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "evidencias"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		},
		PrincipalCultivo: getEnv("PRINCIPAL_CULTIVO", "mani"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
