package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty act url",
			mutate: func(cfg *Config) {
				cfg.ActBaseURL = ""
			},
			wantErr: "w3act base URL",
		},
		{
			name: "act url without host",
			mutate: func(cfg *Config) {
				cfg.ActBaseURL = "http://"
			},
			wantErr: "w3act base URL",
		},
		{
			name: "empty frequency",
			mutate: func(cfg *Config) {
				cfg.ExportFrequency = ""
			},
			wantErr: "frequency",
		},
		{
			name: "empty cdx url",
			mutate: func(cfg *Config) {
				cfg.CdxBaseURL = ""
			},
			wantErr: "cdx base URL",
		},
		{
			name: "zero cache size",
			mutate: func(cfg *Config) {
				cfg.CacheSize = 0
			},
			wantErr: "cache size",
		},
		{
			name: "negative embargo",
			mutate: func(cfg *Config) {
				cfg.EmbargoDays = -1
			},
			wantErr: "embargo",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "empty output file",
			mutate: func(cfg *Config) {
				cfg.OutputFile = ""
			},
			wantErr: "output file",
		},
		{
			name: "bad output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "csv"
			},
			wantErr: "output format",
		},
		{
			name: "empty wayback prefix",
			mutate: func(cfg *Config) {
				cfg.PublicWaybackPrefix = ""
			},
			wantErr: "public wayback prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEmbargoDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmbargoDays = 7
	if got := cfg.Embargo(); got != 7*24*time.Hour {
		t.Fatalf("embargo = %v, want %v", got, 7*24*time.Hour)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("EXPORT_TEST_INT", "14")
	value, ok, err := EnvInt("EXPORT_TEST_INT")
	if err != nil || !ok || value != 14 {
		t.Fatalf("EnvInt = (%d, %v, %v)", value, ok, err)
	}

	t.Setenv("EXPORT_TEST_INT", "nope")
	if _, _, err := EnvInt("EXPORT_TEST_INT"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}

	if _, ok, err := EnvInt("EXPORT_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not ok, got (%v, %v)", ok, err)
	}
}
