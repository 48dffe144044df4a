// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OIDC     OIDCConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Addr              string
	WebDir            string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DatabaseConfig holds the document store connection. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds session and bootstrap user settings.
type AuthConfig struct {
	SessionTTL      time.Duration
	InitialUser     string
	InitialPassword string
	DisableAuth     bool
	// AdminUsers may read the cross-profile audit.
	AdminUsers []string
}

// Admins returns the configured admin usernames plus the initial user, who
// administers the install.
func (c AuthConfig) Admins() []string {
	admins := append([]string(nil), c.AdminUsers...)
	if c.InitialUser != "" {
		admins = append(admins, c.InitialUser)
	}
	return admins
}

// OIDCConfig holds single sign-on provider settings.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

// CORSConfig holds CORS configuration. No origins disables CORS handling.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from a .env file, if present, and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env: %v", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:              getEnv("ADDR", ":8080"),
			WebDir:            getEnv("WEB_DIR", "web"),
			ReadHeaderTimeout: getDurationEnv("READ_HEADER_TIMEOUT", 5*time.Second),
			ShutdownTimeout:   getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			SessionTTL:      getDurationEnv("SESSION_TTL", 24*time.Hour),
			InitialUser:     os.Getenv("INITIAL_USER"),
			InitialPassword: os.Getenv("INITIAL_PASSWORD"),
			DisableAuth:     getEnv("DISABLE_AUTH", "") == "true",
			AdminUsers:      getStringSliceEnv("ADMIN_USERS", nil),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", nil),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Auth.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.OIDC.Enabled() && c.OIDC.RedirectURL == "" {
		return errors.New("OIDC_REDIRECT_URL is required when OIDC_ISSUER is set")
	}
	if (c.Auth.InitialUser == "") != (c.Auth.InitialPassword == "") {
		return errors.New("INITIAL_USER and INITIAL_PASSWORD must be set together")
	}
	if c.Database.URL == "" {
		log.Println("warning: DATABASE_URL not set, profiles are kept in memory")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("warning: %s=%q is not a duration, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}
