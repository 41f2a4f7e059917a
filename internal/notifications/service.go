package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scribe/internal/config"
)

const userAgent = "Scribe-Go/0.1.0"

// Service defines the notification surface exposed to job components.
type Service interface {
	NotifyJobCompleted(ctx context.Context, jobID string, duration time.Duration, warnings []string) error
	NotifyJobFailed(ctx context.Context, jobID string, err error) error
	NotifyJobStopped(ctx context.Context, jobID string) error
	NotifyRecovery(ctx context.Context, wiped int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		sendCompletions: cfg.Notifications.Completions,
		sendErrors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	sendCompletions bool
	sendErrors      bool
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, jobID string, duration time.Duration, warnings []string) error {
	if !n.sendCompletions {
		return nil
	}
	jobID = strings.TrimSpace(jobID)
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("Transcription complete: %s (%s)", jobID, duration)
	if len(warnings) > 0 {
		message = fmt.Sprintf("%s\n%s", message, strings.Join(warnings, "\n"))
	}
	data := payload{
		title:   "Scribe - Complete",
		message: message,
		tags:    []string{"scribe", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, jobID string, err error) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Transcription failed")
	if jobID = strings.TrimSpace(jobID); jobID != "" {
		builder.WriteString(": ")
		builder.WriteString(jobID)
	}
	builder.WriteString("\n")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "Scribe - Error",
		message:  builder.String(),
		tags:     []string{"scribe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobStopped(ctx context.Context, jobID string) error {
	jobID = strings.TrimSpace(jobID)
	data := payload{
		title:   "Scribe - Stopped",
		message: fmt.Sprintf("Transcription stopped by request: %s", jobID),
		tags:    []string{"scribe", "job", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRecovery(ctx context.Context, wiped int) error {
	if wiped <= 0 {
		return nil
	}
	data := payload{
		title:   "Scribe - Recovery",
		message: fmt.Sprintf("Startup recovery wiped %d stale job(s)", wiped),
		tags:    []string{"scribe", "recovery"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Scribe - Test",
		message:  "Notification system test",
		tags:     []string{"scribe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, string, time.Duration, []string) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, error) error { return nil }
func (noopService) NotifyJobStopped(context.Context, string) error       { return nil }
func (noopService) NotifyRecovery(context.Context, int) error            { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
