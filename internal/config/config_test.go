package config

import (
	"testing"
	"time"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 48},
		{"invalid", "abc", 48},
		{"zero", "0", 48},
		{"negative", "-3", 48},
		{"valid", "72", 72},
		{"below_min", "1", 24},
		{"above_max", "9000", 336},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_GRACE_HOURS", tt.env)
			if got := getEnvInt("TEST_GRACE_HOURS", 48, 24, 336); got != tt.want {
				t.Errorf("getEnvInt() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SIMILARITY_SERVICE_URL", "")
	t.Setenv("RECS_ALWAYS_REGENERATE", "")

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if GlobalConfig.CleanupGraceHours != 48 {
		t.Errorf("CleanupGraceHours = %d; want 48", GlobalConfig.CleanupGraceHours)
	}
	if GlobalConfig.SimilarityTimeout != 3*time.Second {
		t.Errorf("SimilarityTimeout = %v; want 3s", GlobalConfig.SimilarityTimeout)
	}
	if GlobalConfig.RecsAlwaysRegenerate {
		t.Error("RecsAlwaysRegenerate should default to false")
	}
}

func TestLoadConfigAlwaysRegenerateFlag(t *testing.T) {
	t.Setenv("RECS_ALWAYS_REGENERATE", "true")

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !GlobalConfig.RecsAlwaysRegenerate {
		t.Error("RecsAlwaysRegenerate should be true when env flag is set")
	}
}
