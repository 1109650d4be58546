package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Env         string
	Port        int
	JWTSecret   string
	TokenTTL    time.Duration
	LogLevel    slog.Level
	CORSOrigins []string

	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	R2 R2Config
}

// R2Config is optional: menu image upload is disabled when it is incomplete.
type R2Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

func (r R2Config) Enabled() bool {
	return r.Endpoint != "" && r.AccessKey != "" && r.SecretKey != "" && r.Bucket != ""
}

// Load reads configuration from the environment. Outside production a .env
// file in the working directory is loaded first, if present.
func Load() (*Config, error) {
	env := getenv("APP_ENV", "development")
	if env != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:           env,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getenv("MONGO_DATABASE", "menuwise"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		R2: R2Config{
			Endpoint:      os.Getenv("R2_ENDPOINT"),
			AccessKey:     os.Getenv("R2_ACCESS_KEY"),
			SecretKey:     os.Getenv("R2_SECRET_KEY"),
			Bucket:        os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL: strings.TrimRight(os.Getenv("R2_PUBLIC_BASE_URL"), "/"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing env var: JWT_SECRET")
	}

	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("invalid PORT value %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "168h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL value %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("missing env var: DATABASE_URL (required by STORE_DRIVER=postgres)")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("missing env var: MONGO_URI (required by STORE_DRIVER=mongo)")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
