package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	AppEnv      string
	LogFilePath string

	MongoURI string
	MongoDB  string
	RedisURI string

	JWTSecret    string
	HostUsername string
	HostPassword string

	SessionCapacity int
	ProgressTTL     time.Duration
	CORSOrigins     []string
	PersistResults  bool
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogFilePath: getEnv("LOG_FILE_PATH", "logs/app.log"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "surveydb"),
		RedisURI: getEnv("REDIS_URI", "localhost:6379"),

		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		HostUsername: getEnv("HOST_USERNAME", "admin"),
		HostPassword: getEnv("HOST_PASSWORD", "admin"),

		SessionCapacity: getEnvAsInt("SESSION_CAPACITY", 1024),
		ProgressTTL:     getEnvAsDuration("PROGRESS_TTL", 24*time.Hour),
		CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		PersistResults:  getEnvAsBool("PERSIST_RESULTS", true),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// RedisAddr strips a redis:// scheme so the value can be used as a
// plain host:port address.
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
