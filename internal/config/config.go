package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string
	LogMode  string // dev|prod

	DBDriver string
	DBDSN    string

	// Base directory for uploaded source files (scans, PDFs).
	UploadBasePath string

	CORSOrigins []string

	// Generation defaults; request parameters override these.
	DefaultDifficultyMin int
	DefaultDifficultyMax int
	DefaultDurationMin   int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:       addr,
		LogMode:        envOr("LOG_MODE", "dev"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		UploadBasePath: envOr("UPLOAD_BASE_PATH", "./uploaded_files"),
		CORSOrigins: csvOr("CORS_ORIGINS",
			"http://localhost:3000,http://localhost:5173,http://localhost:5174,http://127.0.0.1:5173"),
		DefaultDifficultyMin: envIntOr("DIFFICULTY_MIN", 3),
		DefaultDifficultyMax: envIntOr("DIFFICULTY_MAX", 7),
		DefaultDurationMin:   envIntOr("DURATION_MINUTES", 180),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
