package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"scribe/internal/config"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newTestService(t *testing.T, mutate func(*config.Config)) (Service, *[]captured) {
	t.Helper()
	var mu sync.Mutex
	var requests []captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	base := config.Default()
	cfg := &base
	cfg.Notifications.NtfyTopic = server.URL
	if mutate != nil {
		mutate(cfg)
	}
	return NewService(cfg), &requests
}

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	base := config.Default()
	svc := NewService(&base)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("service = %T, want noop", svc)
	}
	if err := svc.NotifyJobFailed(context.Background(), "meeting", errors.New("boom")); err != nil {
		t.Fatalf("noop returned error: %v", err)
	}
}

func TestNotifyJobCompleted(t *testing.T) {
	svc, requests := newTestService(t, nil)

	err := svc.NotifyJobCompleted(context.Background(), "meeting", 90*time.Second, []string{"Speaker diarization was not performed"})
	if err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}
	if len(*requests) != 1 {
		t.Fatalf("requests = %d", len(*requests))
	}
	got := (*requests)[0]
	if got.title != "Scribe - Complete" {
		t.Errorf("title = %q", got.title)
	}
	if !strings.Contains(got.body, "meeting") || !strings.Contains(got.body, "1m30s") {
		t.Errorf("body = %q", got.body)
	}
	if !strings.Contains(got.body, "diarization") {
		t.Errorf("warning missing from body: %q", got.body)
	}
}

func TestNotifyJobCompletedSuppressed(t *testing.T) {
	svc, requests := newTestService(t, func(cfg *config.Config) {
		cfg.Notifications.Completions = false
	})
	if err := svc.NotifyJobCompleted(context.Background(), "meeting", time.Second, nil); err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}
	if len(*requests) != 0 {
		t.Fatalf("suppressed completion was sent: %+v", *requests)
	}
}

func TestNotifyJobFailed(t *testing.T) {
	svc, requests := newTestService(t, nil)

	if err := svc.NotifyJobFailed(context.Background(), "meeting", errors.New("gpu out of memory")); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	got := (*requests)[0]
	if got.priority != "high" {
		t.Errorf("priority = %q", got.priority)
	}
	if !strings.Contains(got.body, "gpu out of memory") {
		t.Errorf("body = %q", got.body)
	}
}

func TestNotifyRecoverySkipsZero(t *testing.T) {
	svc, requests := newTestService(t, nil)
	if err := svc.NotifyRecovery(context.Background(), 0); err != nil {
		t.Fatalf("NotifyRecovery: %v", err)
	}
	if len(*requests) != 0 {
		t.Fatalf("zero-wipe recovery was sent: %+v", *requests)
	}
	if err := svc.NotifyRecovery(context.Background(), 3); err != nil {
		t.Fatalf("NotifyRecovery: %v", err)
	}
	if len(*requests) != 1 || !strings.Contains((*requests)[0].body, "3") {
		t.Fatalf("requests = %+v", *requests)
	}
}

func TestSendSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	base := config.Default()
	cfg := &base
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(cfg)

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v", err)
	}
}
