package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Combine.MaxSegments != 50 || cfg.Combine.MaxDuration() != 30*time.Minute {
		t.Fatalf("unexpected combine limits: %+v", cfg.Combine)
	}
	if cfg.Transcription.Timeout() != time.Minute {
		t.Fatalf("expected 60s transcription timeout, got %s", cfg.Transcription.Timeout())
	}
	if cfg.HTTP.Address() != "0.0.0.0:8080" {
		t.Fatalf("unexpected address %s", cfg.HTTP.Address())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ASSEMBLY_API_KEY", "assembly-key")
	t.Setenv("VOXTAG_STORAGE_BACKEND", "memory")
	t.Setenv("VOXTAG_TRANSCRIPTION_ASYNC", "true")
	t.Setenv("VOXTAG_COMBINE_MAX_SEGMENTS", "5")
	t.Setenv("VOXTAG_SESSION_IDLE_TIMEOUT_MINUTES", "15")
	t.Setenv("VOXTAG_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.HTTP.Port)
	}
	if cfg.Transcription.APIKey != "assembly-key" {
		t.Fatalf("expected api key override")
	}
	if cfg.Storage.Backend != "memory" || !cfg.Transcription.Async {
		t.Fatalf("expected storage and async overrides, got %+v", cfg)
	}
	if cfg.Combine.MaxSegments != 5 {
		t.Fatalf("expected max segments 5, got %d", cfg.Combine.MaxSegments)
	}
	if cfg.Session.IdleTimeout() != 15*time.Minute {
		t.Fatalf("expected 15m idle timeout, got %s", cfg.Session.IdleTimeout())
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("expected jwt secret override")
	}
}

func TestPrefixedEnvWinsOverPlain(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("VOXTAG_HTTP_PORT", "9100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9100 {
		t.Fatalf("expected VOXTAG_HTTP_PORT to win, got %d", cfg.HTTP.Port)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxtag.yaml")
	body := `
http:
  port: 7000
storage:
  backend: mongo
mongo:
  uri: mongodb://db:27017
transcription:
  backend: exec
  command: whisper --json
combine:
  max_segments: 10
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 7000 || cfg.Storage.Backend != "mongo" || cfg.Mongo.URI != "mongodb://db:27017" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Transcription.Command != "whisper --json" || cfg.Combine.MaxSegments != 10 {
		t.Fatalf("unexpected transcription/combine config: %+v %+v", cfg.Transcription, cfg.Combine)
	}
	// fields absent from the file keep their defaults
	if cfg.Combine.MaxDurationSeconds != 1800 {
		t.Fatalf("expected default max duration, got %d", cfg.Combine.MaxDurationSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":             func(c *Config) { c.HTTP.Port = 0 },
		"storage backend":  func(c *Config) { c.Storage.Backend = "s3" },
		"storage dir":      func(c *Config) { c.Storage.Dir = "" },
		"exec command":     func(c *Config) { c.Transcription.Backend = "exec" },
		"stt backend":      func(c *Config) { c.Transcription.Backend = "whisper" },
		"timeout":          func(c *Config) { c.Transcription.TimeoutMS = 0 },
		"negative limit":   func(c *Config) { c.Combine.MaxSegments = -1 },
		"idle timeout":     func(c *Config) { c.Session.IdleTimeoutMinutes = 0 },
		"jwt secret":       func(c *Config) { c.Auth.JWTSecret = "" },
		"cleanup interval": func(c *Config) { c.Session.CleanupIntervalSeconds = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := validate(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := validate(Default()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("VOXTAG_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("VOXTAG_TEST_DOTENV", "")
	os.Unsetenv("VOXTAG_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("VOXTAG_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestEffectiveAPIKey(t *testing.T) {
	cases := []struct {
		backend, key, want string
	}{
		{"assemblyai", "", ""},
		{"assemblyai", "k", "k"},
		{"mock", "", "local"},
		{"exec", "", "local"},
		{"exec", "k", "k"},
	}
	for _, tc := range cases {
		got := TranscriptionConfig{Backend: tc.backend, APIKey: tc.key}.EffectiveAPIKey()
		if got != tc.want {
			t.Errorf("%s/%q: expected %q, got %q", tc.backend, tc.key, tc.want, got)
		}
	}
}
