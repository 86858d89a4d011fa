package main

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spiritual-journal/postsync"
)

func (b *Blog) render(w http.ResponseWriter, page string, data map[string]any) {
	b.renderStatus(w, http.StatusOK, page, data)
}

func (b *Blog) renderStatus(w http.ResponseWriter, status int, page string, data map[string]any) {
	var buf bytes.Buffer
	if err := b.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		b.logger.Error("rendering template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (b *Blog) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (b *Blog) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := getPosts(b.db)
	if err != nil {
		b.logger.Error("listing posts", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	intro, err := getSetting(b.db, "intro")
	if err != nil {
		b.logger.Error("reading intro", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session, _ := b.currentSession(r)

	b.render(w, "home.html", map[string]any{
		"Title":           "Home",
		"Posts":           posts,
		"Intro":           intro,
		"IsAuthenticated": session != nil,
		"CSRFToken":       b.ensureCSRFToken(w, r),
	})
}

func (b *Blog) Login(w http.ResponseWriter, r *http.Request) {
	if session, _ := b.currentSession(r); session != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Title":           "Sign in",
		"IsAuthenticated": false,
		"CSRFToken":       b.ensureCSRFToken(w, r),
	}

	if r.Method == http.MethodGet {
		b.render(w, "login.html", data)
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	email := r.FormValue("email")
	if !b.authenticate(email, r.FormValue("password")) {
		b.logger.Warn("failed login", "email", email, "ip", clientIP(r))
		data["Email"] = email
		data["Error"] = "Invalid email or password"
		b.renderStatus(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	if err := b.startSession(w, r, b.adminEmail); err != nil {
		b.logger.Error("starting session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (b *Blog) Logout(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}

	gate := postsync.Gate{Auth: requestAuth{blog: b, w: w, r: r}}
	if err := gate.Leave(r.Context()); err != nil {
		b.logger.Error("signing out", "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// dashboard passes the session gate and returns the session's controller.
// It writes the response itself when entry fails.
func (b *Blog) dashboard(w http.ResponseWriter, r *http.Request) (*postsync.Controller, *postsync.Session, bool) {
	s := sessionFromContext(r.Context())
	if s == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, nil, false
	}

	c := b.workspaces.Get(s.Token, s.Email)
	gate := postsync.Gate{Auth: requestAuth{blog: b, w: w, r: r}}
	session, err := gate.Enter(r.Context(), c)
	if errors.Is(err, postsync.ErrAuthRequired) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, nil, false
	}
	if err != nil {
		b.logger.Error("entering dashboard", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, nil, false
	}

	return c, session, true
}

func (b *Blog) Admin(w http.ResponseWriter, r *http.Request) {
	c, session, ok := b.dashboard(w, r)
	if !ok {
		return
	}

	b.render(w, "admin.html", map[string]any{
		"Title":           "Dashboard",
		"Email":           session.User.Email,
		"State":           c.State(),
		"IsAuthenticated": true,
		"CSRFToken":       b.ensureCSRFToken(w, r),
	})
}

func (b *Blog) AdminSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}
	c, _, ok := b.dashboard(w, r)
	if !ok {
		return
	}

	_, err := c.Submit(r.Context(), r.FormValue("title"), r.FormValue("content"), c.State().EditingID)
	switch {
	case postsync.IsValidationError(err):
		http.Error(w, "Title and content are required", http.StatusBadRequest)
		return
	case errors.Is(err, postsync.ErrBusy):
		http.Error(w, "Another change is still being saved", http.StatusConflict)
		return
	}

	// Failed saves are reported through the dashboard notification.
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (b *Blog) AdminEdit(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	c, _, ok := b.dashboard(w, r)
	if !ok {
		return
	}

	post, found := c.Find(id)
	if !found {
		http.NotFound(w, r)
		return
	}
	c.BeginEdit(post)

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (b *Blog) AdminCancel(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}
	c, _, ok := b.dashboard(w, r)
	if !ok {
		return
	}

	c.CancelEdit()
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (b *Blog) AdminDelete(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	c, _, ok := b.dashboard(w, r)
	if !ok {
		return
	}

	if err := c.Delete(r.Context(), id); errors.Is(err, postsync.ErrBusy) {
		http.Error(w, "Another change is still being saved", http.StatusConflict)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (b *Blog) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if !parseFormWithCSRF(w, r) {
			return
		}

		intro := r.FormValue("intro")
		if intro == "" {
			http.Error(w, "Intro is required", http.StatusBadRequest)
			return
		}

		if err := setSetting(b.db, "intro", intro); err != nil {
			b.logger.Error("saving intro", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
		return
	}

	intro, err := getSetting(b.db, "intro")
	if err != nil {
		b.logger.Error("reading intro", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	b.render(w, "settings.html", map[string]any{
		"Title":           "Settings",
		"Intro":           intro,
		"IsAuthenticated": true,
		"CSRFToken":       b.ensureCSRFToken(w, r),
	})
}
