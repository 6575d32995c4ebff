package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Cache    CacheConfig    `yaml:"cache"`
	AI       AIConfig       `yaml:"ai"`
	Email    EmailConfig    `yaml:"email"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Environment string   `yaml:"environment"`
	CORSOrigins []string `yaml:"cors_origins"`
	Timezone    string   `yaml:"timezone"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"`
	AccessTokenMinutes int    `yaml:"access_token_ttl_minutes"`
	RefreshTokenDays   int    `yaml:"refresh_token_ttl_days"`
	// EncryptionKey is base64 for 32 raw bytes. Empty disables content encryption.
	EncryptionKey string `yaml:"encryption_key"`
}

type CacheConfig struct {
	RedisURL   string `yaml:"redis_url"`
	TTLSeconds int    `yaml:"planet_ttl_seconds"`
}

type AIConfig struct {
	Provider      string `yaml:"provider"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model_emotion"`
	WhisperModel  string `yaml:"openai_model_whisper"`
	ZhipuAPIKey   string `yaml:"zhipu_api_key"`
	ZhipuBaseURL  string `yaml:"zhipu_base_url"`
	ZhipuModel    string `yaml:"zhipu_model_emotion"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model_emotion"`
}

type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
	FromName     string `yaml:"from_name"`
	FrontendURL  string `yaml:"frontend_url"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
			CORSOrigins: []string{"*"},
			Timezone:    "UTC",
		},
		Database: DatabaseConfig{
			Driver: "pgx",
		},
		Auth: AuthConfig{
			AccessTokenMinutes: 60 * 24 * 7,
			RefreshTokenDays:   30,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		AI: AIConfig{
			Provider:      "openai",
			OpenAIBaseURL: "https://api.openai.com/v1",
			OpenAIModel:   "gpt-4o-mini",
			WhisperModel:  "whisper-1",
			ZhipuBaseURL:  "https://open.bigmodel.cn/api/paas/v4",
			ZhipuModel:    "glm-4-flash",
			GeminiModel:   "gemini-2.0-flash",
		},
		Email: EmailConfig{
			From:        "noreply@stellar-journal.app",
			FromName:    "Stellar Journal",
			FrontendURL: "http://localhost:5173",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// STELLAR_CONFIG (if any), then environment variables. A .env file in the working
// directory is loaded into the environment first.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(os.Getenv(envConfigFile), os.Getenv)
}

const envConfigFile = "STELLAR_CONFIG"

func loadWith(path string, getenv func(string) string) (Config, error) {
	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("PORT", &cfg.Server.Port)
	str("ENVIRONMENT", &cfg.Server.Environment)
	str("TIMEZONE", &cfg.Server.Timezone)
	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	str("DATABASE_DRIVER", &cfg.Database.Driver)
	str("DATABASE_URL", &cfg.Database.URL)

	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	str("ENCRYPTION_KEY", &cfg.Auth.EncryptionKey)
	if err := num("ACCESS_TOKEN_TTL_MINUTES", &cfg.Auth.AccessTokenMinutes); err != nil {
		return err
	}
	if err := num("REFRESH_TOKEN_TTL_DAYS", &cfg.Auth.RefreshTokenDays); err != nil {
		return err
	}

	str("REDIS_URL", &cfg.Cache.RedisURL)
	if err := num("PLANET_CACHE_TTL_SECONDS", &cfg.Cache.TTLSeconds); err != nil {
		return err
	}

	str("AI_PROVIDER", &cfg.AI.Provider)
	str("OPENAI_API_KEY", &cfg.AI.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &cfg.AI.OpenAIBaseURL)
	str("OPENAI_MODEL_EMOTION", &cfg.AI.OpenAIModel)
	str("OPENAI_MODEL_WHISPER", &cfg.AI.WhisperModel)
	str("ZHIPU_API_KEY", &cfg.AI.ZhipuAPIKey)
	str("ZHIPU_BASE_URL", &cfg.AI.ZhipuBaseURL)
	str("ZHIPU_MODEL_EMOTION", &cfg.AI.ZhipuModel)
	str("GEMINI_API_KEY", &cfg.AI.GeminiAPIKey)
	str("GEMINI_MODEL_EMOTION", &cfg.AI.GeminiModel)

	str("RESEND_API_KEY", &cfg.Email.ResendAPIKey)
	str("EMAIL_FROM", &cfg.Email.From)
	str("EMAIL_FROM_NAME", &cfg.Email.FromName)
	str("FRONTEND_URL", &cfg.Email.FrontendURL)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("missing required config: JWT_SECRET")
	}
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want pgx or sqlite)", c.Database.Driver)
	}
	switch c.AI.Provider {
	case "openai", "zhipu", "gemini", "none":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AI.Provider)
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Server.Timezone, err)
	}
	if c.Auth.AccessTokenMinutes <= 0 || c.Auth.RefreshTokenDays <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if _, err := c.EncryptionKeyBytes(); err != nil {
		return err
	}
	return nil
}

// Location returns the zone used to bucket records into days.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EncryptionKeyBytes decodes the content key. It returns nil when no key is set.
func (c Config) EncryptionKeyBytes() ([]byte, error) {
	if c.Auth.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Auth.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenMinutes) * time.Minute
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTokenDays) * 24 * time.Hour
}

func (c Config) PlanetCacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
