package main

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initDB(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func seedDB(db *sql.DB, authorEmail string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	posts := []Post{
		{Title: "Stillness", Content: "Sit for five minutes before the day begins.\n\nNotice the breath, and let it be."},
		{Title: "Gratitude", Content: "Name three small things that went well today."},
	}

	for _, post := range posts {
		if _, err := createPost(db, authorEmail, post.Title, post.Content); err != nil {
			return err
		}
	}

	slog.Info("seeded journal posts", "count", len(posts))
	return nil
}

func seedSettings(db *sql.DB) error {
	// Seed default intro text if not exists
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM settings WHERE key = 'intro'").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return setSetting(db, "intro", defaultIntro)
}
