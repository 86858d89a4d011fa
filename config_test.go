package main

import (
	"reflect"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DATABASE_PATH", "ADMIN_EMAIL", "ADMIN_PASS", "SESSION_SECRET", "SECURE_COOKIES", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()

	if cfg.Addr != ":8080" {
		t.Errorf("expected addr ':8080', got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "journal.db" {
		t.Errorf("expected database path 'journal.db', got %q", cfg.DatabasePath)
	}
	if cfg.AdminPassword == "" {
		t.Error("expected a default admin password")
	}
	if len(cfg.SessionSecret) < minSessionSecretLength {
		t.Errorf("expected generated session secret, got %d chars", len(cfg.SessionSecret))
	}
	if cfg.SecureCookies {
		t.Error("expected insecure cookies by default")
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("expected CORS origins [*], got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	t.Setenv("ADDR", ":9090")
	t.Setenv("ADMIN_EMAIL", "guide@example.com")
	t.Setenv("ADMIN_PASS", "hunter2")
	t.Setenv("SESSION_SECRET", secret)
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := loadConfig()

	if cfg.Addr != ":9090" {
		t.Errorf("expected addr ':9090', got %q", cfg.Addr)
	}
	if cfg.AdminEmail != "guide@example.com" {
		t.Errorf("unexpected admin email %q", cfg.AdminEmail)
	}
	if cfg.AdminPassword != "hunter2" {
		t.Errorf("unexpected admin password %q", cfg.AdminPassword)
	}
	if cfg.SessionSecret != secret {
		t.Errorf("expected session secret from env, got %q", cfg.SessionSecret)
	}
	if !cfg.SecureCookies {
		t.Error("expected secure cookies")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("expected CORS origins %v, got %v", want, cfg.CORSAllowedOrigins)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b", []string{"a", "b"}},
		{" a , , b ", []string{"a", "b"}},
		{"", []string{"*"}},
		{",,", []string{"*"}},
	}

	for _, tt := range tests {
		if got := splitCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
