package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"spiritual-journal/postsync"
)

const (
	sessionCookieName = "journal_session"
	sessionTokenKey   = "token"
	csrfCookieName    = "csrf"
	csrfFieldName     = "csrf_token"
	sessionDuration   = 24 * time.Hour
)

type contextKey string

const sessionContextKey contextKey = "session"

func mustHashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

func checkPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func createSession(db *sql.DB, email string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(sessionDuration)
	_, err = db.Exec(`
		INSERT INTO sessions (token, email, expires_at)
		VALUES (?, ?, ?)`, token, email, expiresAt)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}

	return token, nil
}

func getSession(db *sql.DB, token string) (*Session, error) {
	row := db.QueryRow(`
		SELECT token, email, expires_at
		FROM sessions
		WHERE token = ? AND expires_at > ?`, token, time.Now().UTC())

	var session Session
	err := row.Scan(&session.Token, &session.Email, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return &session, nil
}

func deleteSession(db *sql.DB, token string) error {
	_, err := db.Exec("DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func cleanupExpiredSessions(db *sql.DB) error {
	_, err := db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cleaning up expired sessions: %w", err)
	}
	return nil
}

// newCookieStore signs the session cookie. The cookie only carries the
// token; the sessions table decides whether it is still valid.
func newCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// authenticate checks credentials against the configured admin.
func (b *Blog) authenticate(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(b.adminEmail)),
	) == 1
	passOK := checkPassword(b.adminPasswordHash, password)
	return emailOK && passOK
}

func (b *Blog) startSession(w http.ResponseWriter, r *http.Request, email string) error {
	token, err := createSession(b.db, email)
	if err != nil {
		return err
	}

	cookie, _ := b.cookies.Get(r, sessionCookieName)
	cookie.Values[sessionTokenKey] = token
	return cookie.Save(r, w)
}

func sessionToken(cookies sessions.Store, r *http.Request) string {
	// Get only errors on a cookie that no longer decodes; treat it as absent.
	cookie, err := cookies.Get(r, sessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := cookie.Values[sessionTokenKey].(string)
	return token
}

// currentSession returns the valid session of r, or nil.
func (b *Blog) currentSession(r *http.Request) (*Session, error) {
	token := sessionToken(b.cookies, r)
	if token == "" {
		return nil, nil
	}
	return getSession(b.db, token)
}

func (b *Blog) endSession(w http.ResponseWriter, r *http.Request) error {
	token := sessionToken(b.cookies, r)
	if token != "" {
		if err := deleteSession(b.db, token); err != nil {
			return err
		}
		b.workspaces.Drop(token)
	}

	cookie, _ := b.cookies.Get(r, sessionCookieName)
	cookie.Options.MaxAge = -1
	delete(cookie.Values, sessionTokenKey)
	return cookie.Save(r, w)
}

// requestAuth is the auth provider bound to one request.
type requestAuth struct {
	blog *Blog
	w    http.ResponseWriter
	r    *http.Request
}

// CurrentSession prefers the session requireAuth already resolved.
func (a requestAuth) CurrentSession(ctx context.Context) (*postsync.Session, error) {
	session := sessionFromContext(ctx)
	if session == nil {
		var err error
		session, err = a.blog.currentSession(a.r)
		if err != nil || session == nil {
			return nil, err
		}
	}
	return &postsync.Session{User: postsync.User{Email: session.Email}}, nil
}

func (a requestAuth) SignOut(ctx context.Context) error {
	return a.blog.endSession(a.w, a.r)
}

// CSRF protection using double-submit cookie pattern

func (b *Blog) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   b.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

func getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func validateCSRF(r *http.Request) bool {
	cookieToken := getCSRFToken(r)
	formToken := r.FormValue(csrfFieldName)

	if cookieToken == "" || formToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

func parseFormWithCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return false
	}
	return true
}

// ensureCSRFToken returns existing token or creates a new one
func (b *Blog) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	token := getCSRFToken(r)
	if token != "" {
		return token
	}

	token, err := generateToken()
	if err != nil {
		return ""
	}
	b.setCSRFCookie(w, token)
	return token
}

// requireAuth redirects to the login page unless the request has a valid
// session, which it stores in the request context.
func (b *Blog) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := b.currentSession(r)
		if err != nil {
			b.logger.Error("resolving session", "error", err)
		}
		if session == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}
