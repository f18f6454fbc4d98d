// Package client is a Go SDK for the HTTP API together with the local state
// containers an editor front end keeps per entity.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"aari-docs/internal/anchors"
	"aari-docs/internal/comments"
	"aari-docs/internal/content"
	"aari-docs/internal/documents"
	"aari-docs/internal/search"
	"aari-docs/internal/users"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Client calls the API rooted at BaseURL (such as http://localhost:8080/api).
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sends the session token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New builds a Client. Requests carry no client-side timeout; callers bound
// them through the context.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DocumentInput is a create or partial update. Nil fields are omitted.
type DocumentInput struct {
	Title   *string      `json:"title,omitempty"`
	Content *content.Doc `json:"content,omitempty"`
}

// CommentInput opens a thread. Nil offsets let the server apply its defaults.
type CommentInput struct {
	UserID          string `json:"userId"`
	Content         string `json:"content"`
	HighlightedText string `json:"highlightedText"`
	SelectionFrom   *int   `json:"selectionFrom,omitempty"`
	SelectionTo     *int   `json:"selectionTo,omitempty"`
}

func (c *Client) ListDocuments(ctx context.Context) ([]documents.Document, error) {
	var out []documents.Document
	err := c.do(ctx, http.MethodGet, "/documents", nil, &out)
	return out, err
}

func (c *Client) CreateDocument(ctx context.Context, in DocumentInput) (documents.Document, error) {
	var out documents.Document
	err := c.do(ctx, http.MethodPost, "/documents", in, &out)
	return out, err
}

func (c *Client) GetDocument(ctx context.Context, id string) (documents.Document, error) {
	var out documents.Document
	err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) UpdateDocument(ctx context.Context, id string, in DocumentInput) (documents.Document, error) {
	var out documents.Document
	err := c.do(ctx, http.MethodPatch, "/documents/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
}

// Highlights returns the server-computed ranges for a document's open threads.
func (c *Client) Highlights(ctx context.Context, documentID string) ([]anchors.Highlight, error) {
	var out []anchors.Highlight
	err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(documentID)+"/highlights", nil, &out)
	return out, err
}

// ListComments fetches a document's threads. status may be empty, "open" or "resolved".
func (c *Client) ListComments(ctx context.Context, documentID string, status comments.Status) ([]comments.Comment, error) {
	path := "/documents/" + url.PathEscape(documentID) + "/comments"
	if status != comments.StatusAll {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []comments.Comment
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateComment(ctx context.Context, documentID string, in CommentInput) (comments.Comment, error) {
	var out comments.Comment
	err := c.do(ctx, http.MethodPost, "/documents/"+url.PathEscape(documentID)+"/comments", in, &out)
	return out, err
}

func (c *Client) UpdateComment(ctx context.Context, id, text string) (comments.Comment, error) {
	var out comments.Comment
	err := c.do(ctx, http.MethodPatch, "/comments/"+url.PathEscape(id), map[string]string{"content": text}, &out)
	return out, err
}

func (c *Client) ResolveComment(ctx context.Context, id string, resolved bool) (comments.Comment, error) {
	var out comments.Comment
	err := c.do(ctx, http.MethodPost, "/comments/"+url.PathEscape(id)+"/resolve", map[string]bool{"isResolved": resolved}, &out)
	return out, err
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateReply(ctx context.Context, commentID, userID, text string) (comments.Reply, error) {
	var out comments.Reply
	body := map[string]string{"userId": userID, "content": text}
	err := c.do(ctx, http.MethodPost, "/comments/"+url.PathEscape(commentID)+"/replies", body, &out)
	return out, err
}

func (c *Client) UpdateReply(ctx context.Context, id, text string) (comments.Reply, error) {
	var out comments.Reply
	err := c.do(ctx, http.MethodPatch, "/replies/"+url.PathEscape(id), map[string]string{"content": text}, &out)
	return out, err
}

func (c *Client) DeleteReply(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/replies/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

// Me returns the user behind the session token.
func (c *Client) Me(ctx context.Context) (users.User, error) {
	var out users.User
	err := c.do(ctx, http.MethodGet, "/me", nil, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, q string) (search.Response, error) {
	var out search.Response
	err := c.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(q), nil, &out)
	return out, err
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
