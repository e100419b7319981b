package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Record store (MongoDB)
	MongoDBURL  string
	MongoDBName string

	// Audit log (PostgreSQL)
	DatabaseURL string

	// Redis (token blacklist, listing cache, rate limiting, audit stream)
	RedisURL string

	// Auth
	JWTSecret      string
	TokenTTL       time.Duration
	AdminSecretKey string
	BcryptCost     int

	// Blob store (Cloudinary-compatible unsigned upload)
	UploadURL    string
	UploadPreset string
	UploadFolder string

	// Listing cache
	JobListCacheTTL time.Duration

	// Rate limiting
	RateLimitPerMin int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "hireboard"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AdminSecretKey: getEnv("ADMIN_SECRET_KEY", ""),
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),

		UploadURL:    getEnv("UPLOAD_URL", ""),
		UploadPreset: getEnv("UPLOAD_PRESET", ""),
		UploadFolder: getEnv("UPLOAD_FOLDER", "hireboard"),

		JobListCacheTTL: time.Duration(getEnvInt("JOB_LIST_CACHE_TTL_SEC", 60)) * time.Second,

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 300),

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
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

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
