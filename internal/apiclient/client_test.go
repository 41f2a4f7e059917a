package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/status"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(strings.TrimPrefix(server.URL, "http://"), "secret")
}

func TestRequestsCarryBearerToken(t *testing.T) {
	var gotAuth string
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestJobStatusDecodesRecordAndNull(t *testing.T) {
	responses := map[string]string{
		"/api/status/meeting": `{"status":"processing","progress":40,"step":"Transcribe Audio"}`,
		"/api/status/ghost":   `{"status":null}`,
	}
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responses[r.URL.Path]))
	})

	rec, err := client.JobStatus(context.Background(), "meeting")
	if err != nil {
		t.Fatalf("JobStatus: %v", err)
	}
	if rec == nil || rec.State != status.StateProcessing || rec.Progress != 40 {
		t.Fatalf("record = %+v", rec)
	}

	rec, err = client.JobStatus(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("JobStatus ghost: %v", err)
	}
	if rec != nil {
		t.Fatalf("ghost record = %+v", rec)
	}
}

func TestErrorPayloadSurfacesAsAPIError(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no job named ghost"})
	})

	_, err := client.Transcription(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "no job named ghost" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound = false")
	}
}

func TestUploadSendsMultipartFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.wav")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "meeting.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"filename": header.Filename})
	})

	name, err := client.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if name != "meeting.wav" {
		t.Fatalf("name = %q", name)
	}
}

func TestTranscribeReturnsJobID(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/transcribe/meeting.wav" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"id": "meeting", "status": "processing"})
	})

	id, err := client.Transcribe(context.Background(), "meeting.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if id != "meeting" {
		t.Fatalf("id = %q", id)
	}
}
