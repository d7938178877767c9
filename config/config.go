package config

import (
	"log"
	"os"
	"strconv"
)

const (
	DefaultPort              = "3000"
	DefaultStoreBackend      = "pgx"
	DefaultDBMaxConns        = 10
	DefaultDBConnTimeoutSecs = 30
)

type Config struct {
	Env   string
	Port  string
	DBURL string
	// AdminKey is the full admin token, including its "A-" prefix.
	AdminKey string
	// StoreBackend selects the repository implementation: "pgx" or "gorm".
	StoreBackend string
	DBMaxConns   int
	// DBConnTimeoutSecs bounds how long a caller waits for a pooled
	// connection before failing. Tests that run many operations
	// concurrently raise this above the production default.
	DBConnTimeoutSecs int
}

func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		Port:              getEnv("PORT", DefaultPort),
		DBURL:             mustGetEnv("DB_URL"),
		AdminKey:          mustGetEnv("ADMIN_KEY"),
		StoreBackend:      getEnv("STORE_BACKEND", DefaultStoreBackend),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBConnTimeoutSecs: getEnvAsInt("DB_CONNECT_TIMEOUT", DefaultDBConnTimeoutSecs),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
