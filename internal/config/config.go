package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the SmartBrain server and its dependencies.
type Config struct {
	// Listen is the address the SmartBrain server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Replicate holds the configuration for the image generation provider.
	Replicate *ReplicateConfig `yaml:"replicate" mapstructure:"replicate"`
	// CORS holds the CORS configuration for the HTTP API.
	CORS *CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// URL is the postgres connection string. Use sslmode=require for TLS
	// without certificate verification.
	URL string `yaml:"url" mapstructure:"url"`
}

// ReplicateConfig holds the configuration for the Replicate API.
type ReplicateConfig struct {
	// URL is the base URL of the Replicate API.
	URL string `yaml:"url" mapstructure:"url"`
	// Token is the Replicate API token.
	Token string `yaml:"token" mapstructure:"token"`
	// ModelVersion is the version identifier of the image generation model.
	ModelVersion string `yaml:"model_version" mapstructure:"model_version"`
	// PollInterval is the delay between two status polls of a running prediction.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// MaxPollAttempts is the maximum number of status polls before a prediction
	// is considered timed out.
	MaxPollAttempts int `yaml:"max_poll_attempts" mapstructure:"max_poll_attempts"`
}

// CORSConfig holds the CORS configuration for the HTTP API.
type CORSConfig struct {
	// AllowedOrigins is the list of origins allowed to call the API.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Stable Diffusion 2.1 on Replicate.
const defaultModelVersion = "db21e45d3f7023abc2a46ee38a23973f6dce16bb082a930b0c49861f96d1e5bf"

func setDefaults(v *viper.Viper) {
	v.SetDefault("replicate.url", "https://api.replicate.com")
	v.SetDefault("replicate.model_version", defaultModelVersion)
	v.SetDefault("replicate.poll_interval", time.Second)
	v.SetDefault("replicate.max_poll_attempts", 30)
	v.SetDefault("cors.allowed_origins", []string{
		"https://brain-sigma-pearl.vercel.app",
		"http://localhost:3000",
	})
}

// bindLegacyEnv binds the plain environment variable names the original
// deployment used, next to the SMARTBRAIN_ prefixed ones.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("database.url", "SMARTBRAIN_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("replicate.token", "SMARTBRAIN_REPLICATE_TOKEN", "REPLICATE_API_TOKEN")
}

// Load reads the configuration from the given file path, falling back to the
// default search locations and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindLegacyEnv(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SMARTBRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		// Use specific config file
		v.SetConfigFile(path)
	} else {
		// Search for config in common locations
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.smartbrain")
		v.AddConfigPath("/etc/smartbrain")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The hosting platform of the original deployment configured the listen
	// port via PORT.
	if c.Listen == "" {
		if port := os.Getenv("PORT"); port != "" {
			c.Listen = "0.0.0.0:" + port
		} else {
			c.Listen = "0.0.0.0:3000"
		}
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

func validateConfig(c *Config) error {
	if c.Database == nil || c.Database.URL == "" {
		return fmt.Errorf("database.url is required (or set DATABASE_URL)")
	}
	if c.Replicate == nil || c.Replicate.Token == "" {
		return fmt.Errorf("replicate.token is required (or set REPLICATE_API_TOKEN)")
	}
	if c.Replicate.PollInterval <= 0 {
		return fmt.Errorf("replicate.poll_interval must be positive")
	}
	if c.Replicate.MaxPollAttempts <= 0 {
		return fmt.Errorf("replicate.max_poll_attempts must be positive")
	}
	return nil
}
