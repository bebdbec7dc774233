package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values. Everything has a
// default so the planner runs standalone; the env vars matter for the
// serve mode and the external controller channel.
type Config struct {
	HostIP       string // Host IP for the server
	RESTPort     int    // Port for the REST API
	GinMode      string // Mode for the Gin framework (e.g., release, debug, test)
	MapStore     string // Map repository backend: "csv" or "mongo"
	MapDir       string // Directory for CSV maps
	DBHost       string // Hostname or IP address for the map database
	DBPort       int    // Port number for the map database
	DBUser       string // Username for the map database
	DBPassword   string // Password for the map database
	DBName       string // Name of the map database
	DBCollection string // Collection holding stored maps
	RedisAddr    string // Address of the redis instance backing the controller channel
	RedisPass    string // Password of the redis instance backing the controller channel
	AckTimeoutMS int    // Per-step acknowledgement bound in milliseconds; 0 blocks forever
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file when one is present.
func initConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[HNS] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:       getEnvWithDefault("HNS_HOST_IP", "0.0.0.0"),
		RESTPort:     getEnvAsIntWithDefault("HNS_REST_PORT", 8080),
		GinMode:      getEnvWithDefault("GIN_MODE", "release"),
		MapStore:     getEnvWithDefault("HNS_MAP_STORE", "csv"),
		MapDir:       getEnvWithDefault("HNS_MAP_DIR", "./maps"),
		DBHost:       getEnvWithDefault("HNS_DB_HOST", "localhost"),
		DBPort:       getEnvAsIntWithDefault("HNS_DB_PORT", 27017),
		DBUser:       getEnvWithDefault("HNS_DB_USER", ""),
		DBPassword:   getEnvWithDefault("HNS_DB_PASS", ""),
		DBName:       getEnvWithDefault("HNS_DB_NAME", "hns"),
		DBCollection: getEnvWithDefault("HNS_DB_COLLECTION", "maps"),
		RedisAddr:    getEnvWithDefault("HNS_REDIS_ADDR", "localhost:6379"),
		RedisPass:    getEnvWithDefault("HNS_REDIS_PASS", ""),
		AckTimeoutMS: getEnvAsIntWithDefault("HNS_ACK_TIMEOUT_MS", 0),
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves the value of an environment variable as an integer,
// or returns a default value if not set. A value that cannot be parsed is fatal.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[HNS] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}
