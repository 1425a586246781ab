package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bnb-client/internal/pkg/jwt"
)

// Token store backends.
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type AppConfig struct {
	Environment string
	LogLevel    string

	// Backend
	BackendURL string
	UserAgent  string

	// Local surfaces
	GatewayAddr string
	CORSOrigins []string
	MockAddr    string
	MockSecret  string
	MockLimiter string

	// Session persistence
	TokenStore     string
	TokenFile      string
	StoreNamespace string
	RedisAddr      string
	RedisPass      string
	RedisDB        int
	DatabaseURL    string
	RestoreOnStart bool

	// JWT. Empty key material means claims are decoded without verification.
	JWT jwt.Config
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BackendURL: strings.TrimRight(getEnv("BNB_BACKEND_URL", "http://23.21.26.208:3000"), "/"),
		UserAgent:  getEnv("BNB_USER_AGENT", "bnb-client/1.0"),

		GatewayAddr: getEnv("GATEWAY_ADDR", ":8090"),
		CORSOrigins: getEnvList("CORS_ORIGINS", nil),
		MockAddr:    getEnv("MOCK_ADDR", ":3000"),
		MockSecret:  getEnv("MOCK_SECRET", "bnb-dev-secret"),
		MockLimiter: strings.ToLower(getEnv("MOCK_LIMITER", StoreMemory)),

		TokenStore:     strings.ToLower(getEnv("TOKEN_STORE", StoreFile)),
		TokenFile:      getEnv("TOKEN_FILE", defaultTokenFile()),
		StoreNamespace: getEnv("STORE_NAMESPACE", "default"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      getEnv("REDIS_PASS", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RestoreOnStart: getEnvBool("RESTORE_ON_START", true),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", ""),
			Audience: getEnv("JWT_AUDIENCE", ""),
			TTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
			KID:      getEnv("JWT_KID", ""),
		},
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "bnb", "session.json")
	}
	return filepath.Join(home, ".bnb", "session.json")
}
