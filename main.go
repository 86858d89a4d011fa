package main

import (
	"context"
	"database/sql"
	"errors"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
)

type Blog struct {
	db         *sql.DB
	templates  map[string]*template.Template
	cookies    *sessions.CookieStore
	workspaces *Workspaces
	logger     *slog.Logger

	adminEmail        string
	adminPasswordHash string
	secureCookies     bool
	corsOrigins       []string
}

func NewBlog(db *sql.DB, cfg Config, logger *slog.Logger) *Blog {
	return &Blog{
		db:                db,
		templates:         loadTemplates(),
		cookies:           newCookieStore(cfg.SessionSecret, cfg.SecureCookies),
		workspaces:        NewWorkspaces(db, logger, nil),
		logger:            logger,
		adminEmail:        cfg.AdminEmail,
		adminPasswordHash: mustHashPassword(cfg.AdminPassword),
		secureCookies:     cfg.SecureCookies,
		corsOrigins:       cfg.CORSAllowedOrigins,
	}
}

func (b *Blog) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", b.Health)

	// Public routes
	r.Get("/", b.Home)

	// 5 login attempts per minute per client
	loginLimiter := NewRateLimiter(5, time.Minute)
	r.Get("/login", b.Login)
	r.With(loginLimiter.Limit).Post("/login", b.Login)
	r.Post("/logout", b.Logout)

	// Protected routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(b.requireAuth)
		r.Get("/", b.Admin)
		r.Post("/posts", b.AdminSubmit)
		r.Post("/edit/{id}", b.AdminEdit)
		r.Post("/cancel", b.AdminCancel)
		r.Post("/delete/{id}", b.AdminDelete)
		r.Get("/settings", b.Settings)
		r.Post("/settings", b.Settings)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   b.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Get("/posts", b.APIListPosts)
		r.Group(func(r chi.Router) {
			r.Use(b.requireAPISession)
			r.Post("/posts", b.APICreatePost)
			r.Put("/posts", b.APIUpdatePost)
			r.Delete("/posts", b.APIDeletePost)
		})
	})

	return r
}

func main() {
	cfg := loadConfig()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := openDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err = initDB(db); err != nil {
		log.Fatalf("initializing database: %v", err)
	}

	if err = seedDB(db, cfg.AdminEmail); err != nil {
		log.Fatalf("seeding database: %v", err)
	}

	if err = seedSettings(db); err != nil {
		log.Fatalf("seeding settings: %v", err)
	}

	if err = cleanupExpiredSessions(db); err != nil {
		logger.Error("cleaning up expired sessions", "error", err)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if err := cleanupExpiredSessions(db); err != nil {
				logger.Error("cleaning up expired sessions", "error", err)
			}
		}
	}()

	blog := NewBlog(db, cfg, logger)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      blog.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
