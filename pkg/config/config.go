// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// Storage
	StorageBackend string
	DataDir        string
	MongoDBURL     string
	DBName         string

	// Moderation
	LogChannel         string
	MuteRoleName       string
	DefaultBanDuration time.Duration
	PlatformTimeout    time.Duration
	ActionRetention    time.Duration
	AppealURL          string

	// MQTT
	MQTTEnabled  bool
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port            string
	WebAllowedHosts string
	WebAPIToken     string

	// Environment
	Environment string
	LogsDir     string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		// Storage
		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		DataDir:        getEnv("DATA_DIR", "data"),
		MongoDBURL:     getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:         getEnv("dbName", "PancyModBot"),

		// Moderation
		LogChannel:         getEnv("LOG_CHANNEL", "logs"),
		MuteRoleName:       getEnv("MUTE_ROLE", "Muted"),
		DefaultBanDuration: getEnvDuration("DEFAULT_BAN_DURATION", 24*time.Hour),
		PlatformTimeout:    getEnvDuration("PLATFORM_TIMEOUT", 10*time.Second),
		ActionRetention:    getEnvDuration("ACTION_RETENTION", 7*24*time.Hour),
		AppealURL:          getEnv("APPEAL_URL", ""),

		// MQTT
		MQTTEnabled:  getEnvBool("MQTT_Enabled", false),
		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port:            getEnv("PORT", "3000"),
		WebAllowedHosts: getEnv("WEB_ALLOWED_HOSTS", `^(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`),
		WebAPIToken:     getEnv("WEB_API_TOKEN", ""),

		// Environment
		Environment: getEnv("enviroment", "dev"),
		LogsDir:     getEnv("LOGS_DIR", "logs"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a Go duration ("90s", "24h"); bad values fall back to the default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// UsesMongo reports whether persisted documents live in MongoDB instead of DataDir
func (c *Config) UsesMongo() bool {
	return c.StorageBackend == "mongo"
}
