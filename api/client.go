package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"noteflow/content"
)

const (
	// DefaultBaseURL is the local development server address
	DefaultBaseURL = "http://localhost:5001"

	// DefaultTimeout for API requests (long media can take a while to process)
	DefaultTimeout = 10 * time.Minute

	// MaxFileSize is the largest upload the client will attempt (2GB)
	MaxFileSize = 2 * 1024 * 1024 * 1024
)

// Client talks to the NoteFlow server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom server address.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request/response debug output.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a NoteFlow API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromEnv creates a client configured from NOTEFLOW_SERVER, falling
// back to the local development address.
func NewClientFromEnv(opts ...ClientOption) *Client {
	base := os.Getenv("NOTEFLOW_SERVER")
	if base == "" {
		base = DefaultBaseURL
	}
	return NewClient(append([]ClientOption{WithBaseURL(base)}, opts...)...)
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadFile POSTs a file as multipart form data to the endpoint resolved by
// its classification and returns the server's upload response. The returned
// response always has Success=true; failures of any flavor come back as
// *APIError.
func (c *Client) UploadFile(ctx context.Context, target content.Target, path string) (*UploadResponse, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum %d bytes (2GB)", info.Size(), MaxFileSize)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile(target.FormField, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var resp UploadResponse
	if err := c.do(ctx, "POST", target.Endpoint, writer.FormDataContentType(), body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Message: orDefault(resp.Message, "upload failed"), Kind: resp.ErrorKind}
	}
	return &resp, nil
}

// ProcessURL submits a video URL for server-side extraction and
// summarization. Only YouTube URLs are accepted by the server.
func (c *Client) ProcessURL(ctx context.Context, videoURL string) (*UploadResponse, error) {
	payload, err := json.Marshal(map[string]string{"video_url": videoURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp UploadResponse
	if err := c.do(ctx, "POST", content.EndpointVideo, "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Message: orDefault(resp.Message, "processing failed"), Kind: resp.ErrorKind}
	}
	return &resp, nil
}

// FetchRecord GETs the processed record for an upload by kind and id.
func (c *Client) FetchRecord(ctx context.Context, kind content.Kind, id string) (*Record, error) {
	var record Record
	if err := c.do(ctx, "GET", content.RecordPath(kind, id), "", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Translate asks the server to translate text into the target language.
func (c *Client) Translate(ctx context.Context, text, language string) (string, error) {
	payload, err := json.Marshal(TranslateRequest{Text: text, Language: language})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var resp TranslateResponse
	if err := c.do(ctx, "POST", "/api/translate", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &APIError{Message: orDefault(resp.Message, "translation failed"), Kind: resp.ErrorKind}
	}
	return resp.TranslatedText, nil
}

// Chat sends a follow-up message with its session context and returns the
// assistant's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp ChatResponse
	if err := c.do(ctx, "POST", "/api/chat", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Message: orDefault(resp.Message, "chat request failed"), Kind: resp.ErrorKind}
	}
	return &resp, nil
}

// do executes one request and decodes the JSON response into out. Non-2xx
// statuses become *APIError, carrying the server's message when the body
// parses as one.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("response", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr APIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			apiErr.StatusCode = resp.StatusCode
			return &apiErr
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
