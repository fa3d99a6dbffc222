package config

import (
	"reflect"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q; want :8080", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q; want sqlite", cfg.DBDriver)
	}
	if cfg.DefaultDifficultyMin != 3 || cfg.DefaultDifficultyMax != 7 {
		t.Errorf("difficulty defaults = %d..%d; want 3..7",
			cfg.DefaultDifficultyMin, cfg.DefaultDifficultyMax)
	}
	if cfg.DefaultDurationMin != 180 {
		t.Errorf("DefaultDurationMin = %d; want 180", cfg.DefaultDurationMin)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("CORSOrigins should default to the local dev origins")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://db:5432/examforge")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DIFFICULTY_MIN", "2")
	t.Setenv("DURATION_MINUTES", "120")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q; want :9090", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://db:5432/examforge" {
		t.Errorf("db settings = %q/%q", cfg.DBDriver, cfg.DBDSN)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v; want %v", cfg.CORSOrigins, want)
	}
	if cfg.DefaultDifficultyMin != 2 || cfg.DefaultDurationMin != 120 {
		t.Errorf("overrides not applied: min=%d duration=%d",
			cfg.DefaultDifficultyMin, cfg.DefaultDurationMin)
	}
}

func TestFromEnv_BadIntFallsBack(t *testing.T) {
	t.Setenv("DIFFICULTY_MAX", "many")
	cfg := FromEnv()
	if cfg.DefaultDifficultyMax != 7 {
		t.Errorf("DefaultDifficultyMax = %d; want fallback 7", cfg.DefaultDifficultyMax)
	}
}
