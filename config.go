package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const minSessionSecretLength = 32

type Config struct {
	Addr               string
	DatabasePath       string
	AdminEmail         string
	AdminPassword      string
	SessionSecret      string
	SecureCookies      bool
	CORSAllowedOrigins []string
}

func loadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:               getEnv("ADDR", ":8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "journal.db"),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:      getEnv("ADMIN_PASS", ""),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SecureCookies:      getEnv("SECURE_COOKIES", "false") == "true",
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASS not set, using default password")
		cfg.AdminPassword = "password"
	}

	if len(cfg.SessionSecret) < minSessionSecretLength {
		slog.Warn("SESSION_SECRET missing or too short, generating one; sessions end on restart",
			"min_length", minSessionSecretLength)
		cfg.SessionSecret = randomSecret()
	}

	return cfg
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func randomSecret() string {
	b := make([]byte, minSessionSecretLength)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
