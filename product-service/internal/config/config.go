package config

import (
	"fmt"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/config"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/RajDalvi08/CamousKart/product-service/internal/images"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StoreDriver string // mongo, sqlite, memory
	MongoURI    string
	MongoDBName string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	KafkaBrokers []string

	ImageStore string // disk, s3
	UploadDir  string
	S3         images.S3Config

	AdminToken string
	Log        logger.Config
}

var defaults = map[string]any{
	"HTTP_PORT":        "5000",
	"REQUEST_TIMEOUT":  "15s",
	"SHUTDOWN_TIMEOUT": "10s",
	"STORE_DRIVER":     "sqlite",
	"MONGO_URI":        "mongodb://localhost:27017",
	"MONGO_DB_NAME":    "campuskart",
	"DB_PATH":          "./products.db",
	"REDIS_ADDR":       "",
	"REDIS_PASSWORD":   "",
	"CACHE_TTL":        "5m",
	"KAFKA_BROKERS":    "",
	"IMAGE_STORE":      "disk",
	"UPLOAD_DIR":       "./uploads",
	"S3_ENDPOINT":      "",
	"S3_REGION":        "us-east-1",
	"S3_BUCKET":        "",
	"S3_ACCESS_KEY":    "",
	"S3_SECRET_KEY":    "",
	"S3_PATH_STYLE":    true,
	"S3_PUBLIC_URL":    "",
	"ADMIN_TOKEN":      "",
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "console",
	"LOG_OUTPUT":       "stdout",
}

func Load() (*Config, error) {
	v, err := config.New(defaults)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		StoreDriver:     v.GetString("STORE_DRIVER"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDBName:     v.GetString("MONGO_DB_NAME"),
		SQLitePath:      v.GetString("DB_PATH"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		KafkaBrokers:    config.List(v, "KAFKA_BROKERS"),
		ImageStore:      v.GetString("IMAGE_STORE"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		S3: images.S3Config{
			Endpoint:     v.GetString("S3_ENDPOINT"),
			Region:       v.GetString("S3_REGION"),
			Bucket:       v.GetString("S3_BUCKET"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
			UsePathStyle: v.GetBool("S3_PATH_STYLE"),
			PublicURL:    v.GetString("S3_PUBLIC_URL"),
		},
		AdminToken: v.GetString("ADMIN_TOKEN"),
		Log: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}

	switch cfg.StoreDriver {
	case "mongo", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.ImageStore {
	case "disk", "s3":
	default:
		return nil, fmt.Errorf("unsupported IMAGE_STORE %q", cfg.ImageStore)
	}

	return cfg, nil
}
