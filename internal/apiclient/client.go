// Package apiclient provides the HTTP client the CLI uses to talk to a
// running scribe daemon.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/recovery"
	"scribe/internal/status"
	"scribe/internal/transcription"
)

// APIError carries the HTTP status and error message returned by the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return e.Message
}

// IsNotFound reports whether err is a daemon 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// DependencyStatus mirrors one external binary check from the daemon status
// payload.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// PreflightResult mirrors one environment check from the daemon status
// payload.
type PreflightResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// DaemonStatus is the decoded /api/daemon/status payload.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockFilePath string             `json:"lock_file_path"`
	LedgerPath   string             `json:"ledger_path,omitempty"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Preflight    []PreflightResult  `json:"preflight"`
}

// Client issues authenticated requests against the daemon HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the daemon listening at address (host:port). The
// token may be empty when the daemon runs without authentication.
func New(address, token string) *Client {
	return &Client{
		baseURL: "http://" + strings.TrimSpace(address),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks daemon liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, "", nil)
}

// DaemonStatus fetches runtime, dependency, and preflight information.
func (c *Client) DaemonStatus(ctx context.Context) (*DaemonStatus, error) {
	var out DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/daemon/status", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Files lists the uploaded audio files available for transcription.
func (c *Client) Files(ctx context.Context) ([]string, error) {
	var out struct {
		Files []string `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/files", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Upload streams a local audio file to the daemon and returns the stored
// filename.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize upload form: %w", err)
	}

	var out struct {
		Filename string `json:"filename"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload", &buf, writer.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.Filename, nil
}

// Transcribe starts a job for an uploaded filename and returns the job
// identifier.
func (c *Client) Transcribe(ctx context.Context, filename string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/transcribe/"+filename, nil, "", &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Stop requests a cooperative stop for a processing job.
func (c *Client) Stop(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/transcribe/"+id+"/stop", nil, "", nil)
}

// JobStatus fetches the status record for a job, nil when the daemon has
// never seen the identifier.
func (c *Client) JobStatus(ctx context.Context, id string) (*status.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/status/"+id, nil, "", &raw); err != nil {
		return nil, err
	}

	// Unknown jobs come back as {"status": null}; known jobs are the record
	// itself, whose status field is the state string.
	var probe struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode status payload: %w", err)
	}
	if probe.Status == nil {
		return nil, nil
	}
	var rec status.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode status record: %w", err)
	}
	return &rec, nil
}

// Transcription fetches the result document for a completed job.
func (c *Client) Transcription(ctx context.Context, id string) (*transcription.ResultDocument, error) {
	var out transcription.ResultDocument
	if err := c.do(ctx, http.MethodGet, "/api/transcription/"+id, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recovery fetches the most recent startup recovery report.
func (c *Client) Recovery(ctx context.Context) ([]recovery.Entry, error) {
	var out struct {
		Recovered []recovery.Entry `json:"recovered"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/recovery", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Recovered, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}
