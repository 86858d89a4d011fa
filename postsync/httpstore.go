package postsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 << 20

// HTTPStore is a Store backed by the journal's JSON API. baseURL is the API
// root; requests go to baseURL + "/posts".
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a store client. A nil client uses NewCookieClient.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = NewCookieClient()
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// NewCookieClient returns an HTTP client that keeps session cookies between
// requests.
func NewCookieClient() *http.Client {
	// cookiejar.New only fails on a nil PublicSuffixList
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
	}
}

// wirePost mirrors Post with pointer fields so missing keys can be detected.
type wirePost struct {
	ID      *int64  `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (w wirePost) post() (Post, error) {
	switch {
	case w.ID == nil:
		return Post{}, errors.New("missing id")
	case *w.ID <= 0:
		return Post{}, fmt.Errorf("invalid id %d", *w.ID)
	case w.Title == nil:
		return Post{}, errors.New("missing title")
	case w.Content == nil:
		return Post{}, errors.New("missing content")
	}
	if err := ValidateDraft(*w.Title, *w.Content); err != nil {
		return Post{}, err
	}
	return Post{ID: *w.ID, Title: *w.Title, Content: *w.Content}, nil
}

// List fetches every post visible to the session.
func (s *HTTPStore) List(ctx context.Context) ([]Post, error) {
	body, err := s.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var raw []wirePost
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Op: "list", Err: err}
	}
	posts := make([]Post, 0, len(raw))
	for i, w := range raw {
		p, err := w.post()
		if err != nil {
			return nil, &DecodeError{Op: "list", Err: fmt.Errorf("post %d: %w", i, err)}
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Create stores a new post and returns it with its assigned id.
func (s *HTTPStore) Create(ctx context.Context, title, content string) (Post, error) {
	body, err := s.do(ctx, http.MethodPost, map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return Post{}, err
	}
	return decodePost("create", body)
}

// Update replaces the title and content of post.ID.
func (s *HTTPStore) Update(ctx context.Context, post Post) (Post, error) {
	body, err := s.do(ctx, http.MethodPut, post)
	if err != nil {
		return Post{}, err
	}
	return decodePost("update", body)
}

// Delete removes the post with id. The response body is ignored.
func (s *HTTPStore) Delete(ctx context.Context, id int64) error {
	_, err := s.do(ctx, http.MethodDelete, map[string]int64{"id": id})
	return err
}

func decodePost(op string, body []byte) (Post, error) {
	var w wirePost
	if err := json.Unmarshal(body, &w); err != nil {
		return Post{}, &DecodeError{Op: op, Err: err}
	}
	p, err := w.post()
	if err != nil {
		return Post{}, &DecodeError{Op: op, Err: err}
	}
	return p, nil
}

// do sends payload as JSON and returns the body of a 2xx response.
func (s *HTTPStore) do(ctx context.Context, method string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", method, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/posts", reqBody)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s /posts: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, StatusCode: resp.StatusCode}
	}
	return body, nil
}
