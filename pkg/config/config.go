package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces structured overrides: STOREPLAN_SERVER__PORT -> server.port
const EnvPrefix = "STOREPLAN_"

// Config is the service configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Port        int    `json:"port"`
	Mode        string `json:"mode"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

// DatabaseConfig selects Postgres (URL) or a SQLite file (Path)
type DatabaseConfig struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// AuthConfig holds admin and API key settings
type AuthConfig struct {
	JWTSecret        string `json:"jwt_secret"`
	APIMasterSecret  string `json:"api_master_secret"`
	AdminUsername    string `json:"admin_username"`
	AdminPassword    string `json:"admin_password"`
	RequireAPIKey    bool   `json:"require_api_key"`
	TokenTTLHours    int    `json:"token_ttl_hours"`
	DefaultRateLimit int    `json:"default_rate_limit"`
}

// LoggingConfig sets the log level
type LoggingConfig struct {
	Level string `json:"level"`
}

// legacyEnv maps the plain variable names used by older deployments
var legacyEnv = map[string]string{
	"PORT":              "server.port",
	"GIN_MODE":          "server.mode",
	"DATABASE_URL":      "database.url",
	"DATA_PATH":         "database.path",
	"JWT_SECRET":        "auth.jwt_secret",
	"API_MASTER_SECRET": "auth.api_master_secret",
	"ADMIN_USERNAME":    "auth.admin_username",
	"ADMIN_PASSWORD":    "auth.admin_password",
	"LOG_LEVEL":         "logging.level",
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			Mode:        "release",
			MaxUploadMB: 32,
		},
		Database: DatabaseConfig{
			Path: "storeplan.db",
		},
		Auth: AuthConfig{
			AdminUsername:    "admin",
			AdminPassword:    "admin123",
			TokenTTLHours:    24,
			DefaultRateLimit: 10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadDotEnv loads the first .env found in the working directory or its parents
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load builds the configuration from defaults, an optional file and the
// environment, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("auth.token_ttl_hours must be positive")
	}
	if c.Auth.RequireAPIKey && c.Auth.APIMasterSecret == "" {
		return errors.New("auth.require_api_key needs auth.api_master_secret")
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return TOML(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}

func envKey(name string) string {
	if key, ok := legacyEnv[name]; ok {
		return key
	}
	if strings.HasPrefix(name, EnvPrefix) {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
	}
	return ""
}
