package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // filesystem, memory or mongo
	Dir     string `yaml:"dir"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type TranscriptionConfig struct {
	Backend   string `yaml:"backend"` // assemblyai, google, gemini, exec or mock
	APIKey    string `yaml:"api_key"`
	TimeoutMS int    `yaml:"timeout_ms"`
	Async     bool   `yaml:"async"`
	Command   string `yaml:"command"`
	Model     string `yaml:"model"`
	Language  string `yaml:"language"`
	BaseURL   string `yaml:"base_url"`
	TempDir   string `yaml:"temp_dir"`
}

type CombineConfig struct {
	MaxSegments        int `yaml:"max_segments"`
	MaxDurationSeconds int `yaml:"max_duration_seconds"`
}

type SessionConfig struct {
	IdleTimeoutMinutes     int `yaml:"idle_timeout_minutes"`
	CleanupIntervalSeconds int `yaml:"cleanup_interval_seconds"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

type Config struct {
	Environment   string              `yaml:"environment"`
	HTTP          HTTPConfig          `yaml:"http"`
	Storage       StorageConfig       `yaml:"storage"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Combine       CombineConfig       `yaml:"combine"`
	Session       SessionConfig       `yaml:"session"`
	Auth          AuthConfig          `yaml:"auth"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
}

func Default() Config {
	return Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "filesystem",
			Dir:     "./recordings",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "voxtag",
		},
		Transcription: TranscriptionConfig{
			Backend:   "assemblyai",
			TimeoutMS: 60000,
			Language:  "en-US",
		},
		Combine: CombineConfig{
			MaxSegments:        50,
			MaxDurationSeconds: 1800,
		},
		Session: SessionConfig{
			IdleTimeoutMinutes:     24 * 60,
			CleanupIntervalSeconds: 60,
		},
		Auth: AuthConfig{
			JWTSecret:     "your-secret-key-change-in-production",
			TokenTTLHours: 24,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Environment, "VOXTAG_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "VOXTAG_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "PORT")
	overrideInt(&cfg.HTTP.Port, "VOXTAG_HTTP_PORT")
	overrideString(&cfg.Storage.Backend, "VOXTAG_STORAGE_BACKEND")
	overrideString(&cfg.Storage.Dir, "VOXTAG_STORAGE_DIR")
	overrideString(&cfg.Mongo.URI, "MONGODB_URI")
	overrideString(&cfg.Mongo.URI, "VOXTAG_MONGO_URI")
	overrideString(&cfg.Mongo.Database, "VOXTAG_MONGO_DATABASE")
	overrideString(&cfg.Transcription.Backend, "VOXTAG_TRANSCRIPTION_BACKEND")
	overrideString(&cfg.Transcription.APIKey, "ASSEMBLY_API_KEY")
	overrideString(&cfg.Transcription.APIKey, "VOXTAG_TRANSCRIPTION_API_KEY")
	overrideInt(&cfg.Transcription.TimeoutMS, "VOXTAG_TRANSCRIPTION_TIMEOUT_MS")
	overrideBool(&cfg.Transcription.Async, "VOXTAG_TRANSCRIPTION_ASYNC")
	overrideString(&cfg.Transcription.Command, "VOXTAG_TRANSCRIPTION_COMMAND")
	overrideString(&cfg.Transcription.Model, "VOXTAG_TRANSCRIPTION_MODEL")
	overrideString(&cfg.Transcription.Language, "VOXTAG_TRANSCRIPTION_LANGUAGE")
	overrideString(&cfg.Transcription.BaseURL, "VOXTAG_TRANSCRIPTION_BASE_URL")
	overrideString(&cfg.Transcription.TempDir, "VOXTAG_TRANSCRIPTION_TEMP_DIR")
	overrideInt(&cfg.Combine.MaxSegments, "VOXTAG_COMBINE_MAX_SEGMENTS")
	overrideInt(&cfg.Combine.MaxDurationSeconds, "VOXTAG_COMBINE_MAX_DURATION_SECONDS")
	overrideInt(&cfg.Session.IdleTimeoutMinutes, "VOXTAG_SESSION_IDLE_TIMEOUT_MINUTES")
	overrideInt(&cfg.Session.CleanupIntervalSeconds, "VOXTAG_SESSION_CLEANUP_INTERVAL_SECONDS")
	overrideString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.Auth.JWTSecret, "VOXTAG_AUTH_JWT_SECRET")
	overrideInt(&cfg.Auth.TokenTTLHours, "VOXTAG_AUTH_TOKEN_TTL_HOURS")
	overrideString(&cfg.Telemetry.LogLevel, "VOXTAG_TELEMETRY_LOG_LEVEL")
	overrideBool(&cfg.Telemetry.MetricsEnabled, "VOXTAG_TELEMETRY_METRICS_ENABLED")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	switch cfg.Storage.Backend {
	case "filesystem":
		if cfg.Storage.Dir == "" {
			return errors.New("storage.dir must not be empty for the filesystem backend")
		}
	case "memory":
	case "mongo":
		if cfg.Mongo.URI == "" {
			return errors.New("mongo.uri must not be empty for the mongo backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", cfg.Storage.Backend)
	}
	switch cfg.Transcription.Backend {
	case "assemblyai", "google", "gemini", "mock":
	case "exec":
		if strings.TrimSpace(cfg.Transcription.Command) == "" {
			return errors.New("transcription.command must not be empty for the exec backend")
		}
	default:
		return fmt.Errorf("transcription.backend %q is not supported", cfg.Transcription.Backend)
	}
	if cfg.Transcription.TimeoutMS <= 0 {
		return errors.New("transcription.timeout_ms must be positive")
	}
	if cfg.Combine.MaxSegments < 0 {
		return errors.New("combine.max_segments must not be negative")
	}
	if cfg.Combine.MaxDurationSeconds < 0 {
		return errors.New("combine.max_duration_seconds must not be negative")
	}
	if cfg.Session.IdleTimeoutMinutes <= 0 {
		return errors.New("session.idle_timeout_minutes must be positive")
	}
	if cfg.Session.CleanupIntervalSeconds <= 0 {
		return errors.New("session.cleanup_interval_seconds must be positive")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		return errors.New("auth.token_ttl_hours must be positive")
	}
	return nil
}

func (c TranscriptionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// EffectiveAPIKey returns the configured key. Local backends do not need a
// credential, so they get a placeholder that enables transcription.
func (c TranscriptionConfig) EffectiveAPIKey() string {
	if c.APIKey == "" && (c.Backend == "mock" || c.Backend == "exec") {
		return "local"
	}
	return c.APIKey
}

func (c CombineConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSeconds) * time.Second
}

func (c SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

func (c SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Address returns the listen address for the HTTP server
func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
