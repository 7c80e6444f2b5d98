package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all application configuration
type Config struct {
	// Backend
	APIURL          string
	Profile         string
	HTTPTimeout     time.Duration
	RetryMaxElapsed time.Duration

	// View
	PageSize int
	Language language.Tag

	// Dashboard
	ServerPort     string
	ReloadSchedule string

	// Paths
	ConfigDir    string
	DatabaseFile string // $CONFIG_DIR/session.db

	// Observability
	LogLevel       string
	LogFormat      string
	TracingEnabled bool
}

// flagKeys maps CLI flag names to configuration keys
var flagKeys = map[string]string{
	"api-url":   "WHIRLWATCH_API_URL",
	"profile":   "PROFILE",
	"log-level": "LOG_LEVEL",
	"page-size": "PAGE_SIZE",
	"port":      "SERVER_PORT",
}

// BindFlags binds the flags present in flags to their configuration keys.
// Flags that were not defined are skipped.
func BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("WHIRLWATCH_API_URL", "http://127.0.0.1:5000")
	viper.SetDefault("PROFILE", "default")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("RETRY_MAX_ELAPSED_SECONDS", 15)
	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("COLLATION_LANGUAGE", "en")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RELOAD_SCHEDULE", "@every 10m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("TRACING_ENABLED", false)

	configDir, err := resolveConfigDir(viper.GetString("CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Backend
		APIURL:          strings.TrimRight(viper.GetString("WHIRLWATCH_API_URL"), "/"),
		Profile:         viper.GetString("PROFILE"),
		HTTPTimeout:     time.Duration(viper.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		RetryMaxElapsed: time.Duration(viper.GetInt("RETRY_MAX_ELAPSED_SECONDS")) * time.Second,

		// View
		PageSize: viper.GetInt("PAGE_SIZE"),

		// Dashboard
		ServerPort:     viper.GetString("SERVER_PORT"),
		ReloadSchedule: viper.GetString("RELOAD_SCHEDULE"),

		// Paths
		ConfigDir:    configDir,
		DatabaseFile: filepath.Join(configDir, "session.db"),

		// Logging
		LogLevel:       viper.GetString("LOG_LEVEL"),
		LogFormat:      viper.GetString("LOG_FORMAT"),
		TracingEnabled: viper.GetBool("TRACING_ENABLED"),
	}

	// Validate fields
	u, err := url.Parse(config.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("WHIRLWATCH_API_URL must be an absolute URL, got %q", config.APIURL)
	}
	if config.Profile == "" {
		return nil, fmt.Errorf("PROFILE is required")
	}
	if config.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", config.PageSize)
	}
	if config.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	tag, err := language.Parse(viper.GetString("COLLATION_LANGUAGE"))
	if err != nil {
		return nil, fmt.Errorf("invalid COLLATION_LANGUAGE: %w", err)
	}
	config.Language = tag

	return config, nil
}

func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", "whirlwatch"), nil
	}

	// Convert relative path to absolute path
	absPath, err := filepath.Abs(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
	}
	return absPath, nil
}
