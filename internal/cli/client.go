// Package cli provides the HTTP client and output formatting behind the coachrag subcommands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/coachrag/internal/models"
)

// DefaultServerURL is where client subcommands look for the API.
const DefaultServerURL = "http://localhost:8080"

// APIError is a non-2xx API response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}

// Client calls the coach HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// NewClient returns a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends the file at path to POST /upload.
func (c *Client) Upload(ctx context.Context, path string, singleChunk bool, priority int) (*models.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("singleChunk", strconv.FormatBool(singleChunk))
	q.Set("priority", strconv.Itoa(priority))
	var out models.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/upload?"+q.Encode(), mw.FormDataContentType(), &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query sends query to POST /query.
func (c *Client) Query(ctx context.Context, query string) (*models.QueryResponse, error) {
	data, err := json.Marshal(models.QueryRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var out models.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/query", "application/json", bytes.NewReader(data), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete calls DELETE /delete/{doc_id}.
func (c *Client) Delete(ctx context.Context, docID string) (*models.DeleteResponse, error) {
	var out models.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/delete/"+url.PathEscape(docID), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status calls GET /status.
func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var e models.ErrorResponse
		if json.Unmarshal(b, &e) == nil && e.Detail != "" {
			return &APIError{StatusCode: resp.StatusCode, Detail: e.Detail}
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
