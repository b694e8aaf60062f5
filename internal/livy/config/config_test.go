package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Kind != KindPySpark {
		t.Errorf("Expected Kind=%s, got %s", KindPySpark, cfg.Kind)
	}
	if cfg.IvyDir != DefaultIvyDir {
		t.Errorf("Expected IvyDir=%s, got %s", DefaultIvyDir, cfg.IvyDir)
	}
	if cfg.Poll.Fallback != DefaultPollFallback {
		t.Errorf("Expected Fallback=%v, got %v", DefaultPollFallback, cfg.Poll.Fallback)
	}
	if cfg.Poll.MaxDuration != 0 {
		t.Errorf("Expected unbounded polling by default, got %v", cfg.Poll.MaxDuration)
	}
	if len(cfg.Poll.Seed) != len(DefaultPollSeed) {
		t.Errorf("Expected %d seed intervals, got %d", len(DefaultPollSeed), len(cfg.Poll.Seed))
	}

	// mutating the copy must not touch the package default
	cfg.Poll.Seed[0] = time.Hour
	if DefaultPollSeed[0] == time.Hour {
		t.Error("Default() must copy the seed intervals")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing url", func(c *Config) { c.URL = "" }, "url"},
		{"blank url", func(c *Config) { c.URL = "   " }, "url"},
		{"spark kind", func(c *Config) { c.Kind = "spark" }, "kind"},
		{"empty jar", func(c *Config) { c.Jars = []string{"org.a:b:1", ""} }, "jars"},
		{"zero fallback", func(c *Config) { c.Poll.Fallback = 0 }, "poll"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.URL = "livy.local"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s", tt.wantField, cfgErr.Field)
			}
		})
	}
}

func TestFromArgs(t *testing.T) {
	cfg, err := FromArgs("http://livy", "8998", []string{"org.postgresql:postgresql:42.2.5"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.URL != "http://livy" || cfg.Port != "8998" {
		t.Errorf("Unexpected connection params: %s %s", cfg.URL, cfg.Port)
	}
	if len(cfg.Jars) != 1 {
		t.Errorf("Expected 1 jar, got %d", len(cfg.Jars))
	}

	_, err = FromArgs("http://livy", "", nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "port" {
		t.Errorf("Expected port ConfigurationError, got %v", err)
	}

	_, err = FromArgs("", "8998", nil)
	if !errors.As(err, &cfgErr) || cfgErr.Field != "url" {
		t.Errorf("Expected url ConfigurationError, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "livyc.yaml")
	content := `
url: https://gateway.example.com
port: "8998"
jars:
  - org.postgresql:postgresql:42.2.5
poll:
  fallback: 2s
  max_duration: 10m
read:
  release_bindings: true
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.URL != "https://gateway.example.com" {
		t.Errorf("Unexpected URL %q", cfg.URL)
	}
	if cfg.Port != "8998" {
		t.Errorf("Unexpected port %q", cfg.Port)
	}
	if len(cfg.Jars) != 1 || cfg.Jars[0] != "org.postgresql:postgresql:42.2.5" {
		t.Errorf("Unexpected jars %v", cfg.Jars)
	}
	if cfg.Poll.Fallback != 2*time.Second {
		t.Errorf("Expected fallback 2s, got %v", cfg.Poll.Fallback)
	}
	if cfg.Poll.MaxDuration != 10*time.Minute {
		t.Errorf("Expected max duration 10m, got %v", cfg.Poll.MaxDuration)
	}
	if !cfg.Read.ReleaseBindings {
		t.Error("Expected release_bindings=true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	// untouched keys keep their defaults
	if cfg.Kind != KindPySpark {
		t.Errorf("Expected default kind, got %s", cfg.Kind)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LIVYC_URL", "livy.internal")
	t.Setenv("LIVYC_PORT", "9000")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.URL != "livy.internal" {
		t.Errorf("Expected URL from env, got %q", cfg.URL)
	}
	if cfg.Port != "9000" {
		t.Errorf("Expected port from env, got %q", cfg.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("Expected error for explicit missing config file")
	}
}
