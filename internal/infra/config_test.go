package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "GEMINI_API_KEY", "VIDEO_ENABLED",
		"SESSION_TTL_MINUTES", "VIDEO_POLL_INTERVAL_SECONDS", "PRELOAD_IMAGES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
	if !cfg.VideoEnabled {
		t.Error("VideoEnabled = false, want true by default")
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 60 {
		t.Errorf("MaxPollAttempts = %d, want 60", cfg.MaxPollAttempts)
	}
	if len(cfg.PreloadImages) != 3 {
		t.Errorf("PreloadImages = %v, want 3 defaults", cfg.PreloadImages)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("VIDEO_ENABLED", "false")
	t.Setenv("VIDEO_MAX_POLL_ATTEMPTS", "5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PRELOAD_IMAGES", "one.png,two.png")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.AppEnv != "production" {
		t.Errorf("AppEnv = %q, want production", cfg.AppEnv)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("GeminiAPIKey = %q, want secret", cfg.GeminiAPIKey)
	}
	if cfg.VideoEnabled {
		t.Error("VideoEnabled = true, want false")
	}
	if cfg.MaxPollAttempts != 5 {
		t.Errorf("MaxPollAttempts = %d, want 5", cfg.MaxPollAttempts)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if len(cfg.PreloadImages) != 2 || cfg.PreloadImages[0] != "one.png" {
		t.Errorf("PreloadImages = %v", cfg.PreloadImages)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("VIDEO_MAX_POLL_ATTEMPTS", "not-a-number")
	cfg, _ := LoadConfig()
	if cfg.MaxPollAttempts != 60 {
		t.Errorf("MaxPollAttempts = %d, want default 60", cfg.MaxPollAttempts)
	}
}
