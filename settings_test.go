package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestGetSetting(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Exec("INSERT INTO settings (key, value) VALUES (?, ?)", "test_key", "test_value")
	if err != nil {
		t.Fatalf("inserting test setting: %v", err)
	}

	value, err := getSetting(db, "test_key")
	if err != nil {
		t.Fatalf("getSetting() error: %v", err)
	}

	if value != "test_value" {
		t.Errorf("expected 'test_value', got '%s'", value)
	}
}

func TestGetSetting_NotFound(t *testing.T) {
	db := setupTestDB(t)

	value, err := getSetting(db, "nonexistent")
	if err != nil {
		t.Fatalf("getSetting() error: %v", err)
	}

	if value != "" {
		t.Errorf("expected empty string, got '%s'", value)
	}
}

func TestSetSetting_Upserts(t *testing.T) {
	db := setupTestDB(t)

	if err := setSetting(db, "intro", "First"); err != nil {
		t.Fatalf("setSetting() error: %v", err)
	}
	if err := setSetting(db, "intro", "Second"); err != nil {
		t.Fatalf("setSetting() error: %v", err)
	}

	value, _ := getSetting(db, "intro")
	if value != "Second" {
		t.Errorf("expected 'Second', got '%s'", value)
	}
}

func TestSettings_GET(t *testing.T) {
	blog := setupTestBlog(t)
	h := blog.routes()

	if err := setSetting(blog.db, "intro", "Welcome, seeker"); err != nil {
		t.Fatalf("setSetting() error: %v", err)
	}

	req := newRequest(http.MethodGet, "/admin/settings", loginCookies(t, blog))
	w := serve(h, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Welcome, seeker") {
		t.Error("expected current intro in response")
	}
}

func TestSettings_POST(t *testing.T) {
	blog := setupTestBlog(t)
	h := blog.routes()

	form := url.Values{}
	form.Set("intro", "A new beginning")
	w := serve(h, newFormRequest("/admin/settings", form, loginCookies(t, blog)))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, w.Code)
	}

	value, _ := getSetting(blog.db, "intro")
	if value != "A new beginning" {
		t.Errorf("expected intro to be saved, got %q", value)
	}
}

func TestSettings_POST_EmptyIntro(t *testing.T) {
	blog := setupTestBlog(t)
	h := blog.routes()

	form := url.Values{}
	form.Set("intro", "")
	w := serve(h, newFormRequest("/admin/settings", form, loginCookies(t, blog)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSettings_RequiresAuth(t *testing.T) {
	blog := setupTestBlog(t)

	w := serve(blog.routes(), newRequest(http.MethodGet, "/admin/settings", nil))

	if w.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}
