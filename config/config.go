package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nearbuy/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Storage StorageConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds generative AI API configuration
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	RouteModel string `mapstructure:"route_model"`
}

// StorageConfig holds saved list/search persistence configuration
type StorageConfig struct {
	Type string `mapstructure:"type"` // "memory" or "sqlite"
	Path string `mapstructure:"path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nearbuy/")

	v.SetEnvPrefix("NEARBUY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Gemini defaults. The empty api_key default registers the key so the
	// env var binds through AutomaticEnv; validate rejects it when unset.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.route_model", "gemini-2.5-pro")

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", "nearbuy.db")
}

// validate fails fast before any AI request can be attempted, so a missing
// key surfaces as a configuration error rather than a transport error later.
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("%w (set NEARBUY_GEMINI_API_KEY)", domain.ErrMissingCredentials)
	}

	if config.Storage.Type != "memory" && config.Storage.Type != "sqlite" {
		return fmt.Errorf("storage type must be 'memory' or 'sqlite', got: %s", config.Storage.Type)
	}
	if config.Storage.Type == "sqlite" && config.Storage.Path == "" {
		return fmt.Errorf("storage path is required when storage type is 'sqlite'")
	}
	return nil
}
