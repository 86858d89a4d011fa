package main

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"spiritual-journal/postsync"
)

const maxRequestBody = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type postRequest struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type deleteResponse struct {
	ID int64 `json:"id"`
}

func (b *Blog) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		b.logger.Error("encoding response", "error", err)
	}
}

func (b *Blog) respondError(w http.ResponseWriter, status int, errorType, message string) {
	b.respondJSON(w, status, errorResponse{Error: errorType, Message: message})
}

// handleStoreError maps store errors to responses without leaking internals.
func (b *Blog) handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case postsync.IsValidationError(err):
		b.respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, errPostNotFound):
		b.respondError(w, http.StatusNotFound, "NotFound", "Post not found")
	default:
		b.logger.Error("post store", "error", err)
		b.respondError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}

// decodePostRequest accepts only application/json bodies. Cross-site forms
// cannot send that type without a CORS preflight.
func (b *Blog) decodePostRequest(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		b.respondError(w, http.StatusUnsupportedMediaType, "UnsupportedMediaType", "Content-Type must be application/json")
		return req, false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		b.respondError(w, http.StatusBadRequest, "InvalidRequest", "Request body must be a JSON object")
		return req, false
	}
	return req, true
}

// requireAPISession answers 401 instead of redirecting. Mutations rely on
// the JSON content type check in decodePostRequest rather than CSRF tokens.
func (b *Blog) requireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := b.currentSession(r)
		if err != nil {
			b.logger.Error("resolving session", "error", err)
		}
		if session == nil {
			b.respondError(w, http.StatusUnauthorized, "AuthRequired", "Sign in to manage posts")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Blog) storeFor(r *http.Request) ownerStore {
	return ownerStore{db: b.db, email: sessionFromContext(r.Context()).Email}
}

// APIListPosts serves the signed-in admin's posts, or every post to
// anonymous readers.
func (b *Blog) APIListPosts(w http.ResponseWriter, r *http.Request) {
	session, err := b.currentSession(r)
	if err != nil {
		b.logger.Error("resolving session", "error", err)
	}

	if session != nil {
		posts, err := ownerStore{db: b.db, email: session.Email}.List(r.Context())
		if err != nil {
			b.handleStoreError(w, err)
			return
		}
		b.respondJSON(w, http.StatusOK, posts)
		return
	}

	posts, err := getPosts(b.db)
	if err != nil {
		b.handleStoreError(w, err)
		return
	}
	out := make([]postsync.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Sync())
	}
	b.respondJSON(w, http.StatusOK, out)
}

func (b *Blog) APICreatePost(w http.ResponseWriter, r *http.Request) {
	req, ok := b.decodePostRequest(w, r)
	if !ok {
		return
	}

	post, err := b.storeFor(r).Create(r.Context(), req.Title, req.Content)
	if err != nil {
		b.handleStoreError(w, err)
		return
	}
	b.respondJSON(w, http.StatusOK, post)
}

func (b *Blog) APIUpdatePost(w http.ResponseWriter, r *http.Request) {
	req, ok := b.decodePostRequest(w, r)
	if !ok {
		return
	}
	if req.ID <= 0 {
		b.respondError(w, http.StatusBadRequest, "InvalidRequest", "id is required")
		return
	}

	post, err := b.storeFor(r).Update(r.Context(), postsync.Post{ID: req.ID, Title: req.Title, Content: req.Content})
	if err != nil {
		b.handleStoreError(w, err)
		return
	}
	b.respondJSON(w, http.StatusOK, post)
}

func (b *Blog) APIDeletePost(w http.ResponseWriter, r *http.Request) {
	req, ok := b.decodePostRequest(w, r)
	if !ok {
		return
	}
	if req.ID <= 0 {
		b.respondError(w, http.StatusBadRequest, "InvalidRequest", "id is required")
		return
	}

	if err := b.storeFor(r).Delete(r.Context(), req.ID); err != nil {
		b.handleStoreError(w, err)
		return
	}
	b.respondJSON(w, http.StatusOK, deleteResponse{ID: req.ID})
}
