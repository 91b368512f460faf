package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the server.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	AI       AIConfig       `yaml:"ai" json:"ai"`
	Views    ViewsConfig    `yaml:"views" json:"views"`
}

type ServerConfig struct {
	Port string `yaml:"port" json:"port"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path" json:"path"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

type AuthConfig struct {
	UsersFile string        `yaml:"users_file" json:"users_file"`
	JWTSecret string        `yaml:"jwt_secret" json:"-"`
	Issuer    string        `yaml:"issuer" json:"issuer"`
	Audience  string        `yaml:"audience" json:"audience"`
	TokenTTL  time.Duration `yaml:"token_ttl" json:"token_ttl"`
}

type AIConfig struct {
	Endpoint string        `yaml:"endpoint" json:"endpoint"`
	APIKey   string        `yaml:"api_key" json:"-"`
	Model    string        `yaml:"model" json:"model"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

type ViewsConfig struct {
	// LegacyEmptyIsCompleted reports tasks without subtasks as completed.
	LegacyEmptyIsCompleted bool `yaml:"legacy_empty_is_completed" json:"legacy_empty_is_completed"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8008"},
		Database: DatabaseConfig{Path: "task-secretary.db", LogLevel: "warn"},
		Auth: AuthConfig{
			UsersFile: "users.json",
			JWTSecret: "development-insecure-secret-change-me",
			Issuer:    "task-secretary-api",
			Audience:  "task-secretary-clients",
			TokenTTL:  24 * time.Hour,
		},
		AI: AIConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-2.0-flash",
			Timeout:  60 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
		Views: ViewsConfig{LegacyEmptyIsCompleted: true},
	}
}

// Load builds the config from defaults, the optional YAML file at path, and
// then environment variables, later sources winning.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.LogLevel = getEnv("DB_LOG_LEVEL", cfg.Database.LogLevel)
	cfg.Auth.UsersFile = getEnv("USERS_FILE", cfg.Auth.UsersFile)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = getEnv("JWT_AUDIENCE", cfg.Auth.Audience)
	cfg.Auth.TokenTTL = getEnvDuration("JWT_TTL", cfg.Auth.TokenTTL)
	cfg.AI.Endpoint = getEnv("GEMINI_ENDPOINT", cfg.AI.Endpoint)
	cfg.AI.APIKey = getEnv("GEMINI_API_KEY", cfg.AI.APIKey)
	cfg.AI.Model = getEnv("GEMINI_MODEL", cfg.AI.Model)
	cfg.AI.Timeout = getEnvDuration("AI_TIMEOUT", cfg.AI.Timeout)
	cfg.AI.CacheTTL = getEnvDuration("AI_CACHE_TTL", cfg.AI.CacheTTL)
	cfg.Views.LegacyEmptyIsCompleted = getEnvBool("LEGACY_EMPTY_COMPLETED", cfg.Views.LegacyEmptyIsCompleted)
}
