// Package api is the only way out to the mapper backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/mbolis/expert-mapper/model"
)

const (
	QuestionsPath = "/supplier-to-expert-mapper-questions"
	SubmitPath    = "/supplier-to-expert-mapper"
	FilesPath     = "/supplier-to-expert-mapper-files"

	// FilesField is the multipart field every uploaded file is sent under.
	FilesField = "files[]"
)

// Paths lets a deployment point at the older "-handle-data" and
// "-handle-file-uploads" endpoints.
type Paths struct {
	Questions string
	Submit    string
	Files     string
}

func DefaultPaths() Paths {
	return Paths{Questions: QuestionsPath, Submit: SubmitPath, Files: FilesPath}
}

// StatusError is returned when the backend answers with a non 2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type File struct {
	Name    string
	Content io.Reader
}

// FileMeta asks the backend for a pre-signed upload target.
type FileMeta struct {
	Name string `json:"file-name"`
	Type string `json:"file-type"`
}

type Client struct {
	baseURL    string
	paths      Paths
	header     http.Header
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithPaths(p Paths) Option {
	return func(c *Client) { c.paths = p }
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		paths:      DefaultPaths(),
		header:     http.Header{"Accept": {"application/json"}},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Questions(ctx context.Context) ([]model.Question, error) {
	body, err := c.do(ctx, http.MethodGet, c.paths.Questions, "", nil)
	if err != nil {
		return nil, err
	}

	var questions []model.Question
	if err := json.Unmarshal(body, &questions); err != nil {
		return nil, fmt.Errorf("api.questions.decode: %w", err)
	}
	return questions, nil
}

func (c *Client) Submit(ctx context.Context, payload model.SubmissionPayload) (json.RawMessage, error) {
	return c.postJSON(ctx, c.paths.Submit, payload)
}

func (c *Client) UploadFiles(ctx context.Context, files []File) (json.RawMessage, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(FilesField, f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("api.upload.read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, c.paths.Files, mw.FormDataContentType(), buf)
	if err != nil {
		return nil, err
	}
	return rawJSON(body), nil
}

// PresignedURL passes the backend's answer through untouched.
func (c *Client) PresignedURL(ctx context.Context, meta FileMeta) (json.RawMessage, error) {
	return c.postJSON(ctx, c.paths.Files, meta)
}

func (c *Client) postJSON(ctx context.Context, path string, v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return rawJSON(body), nil
}

// rawJSON turns an empty body into null and a non JSON body into a JSON
// string, so the result can always be re-encoded.
func rawJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return json.RawMessage("null")
	case json.Valid(trimmed):
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

// do returns transport errors as they come from the http.Client.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	for key, values := range c.header {
		req.Header[key] = values
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}
