package daemon

import (
	"context"
	"net/http"
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/jobs"
	"scribe/internal/logging"
	"scribe/internal/testsupport"
)

func newTestDaemon(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	store := testsupport.NewStatusStore(cfg)
	jobSvc, err := jobs.NewService(jobs.Deps{
		Config:   cfg,
		Statuses: store,
		Runner:   completingRunner{store: store},
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("jobs.NewService: %v", err)
	}
	d, err := New(cfg, jobSvc, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Workflow.MinFreeSpaceMiB = 1
	})
	d := newTestDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	addr := d.Addr()
	if addr == "" {
		t.Fatal("no listen address after start")
	}
	if !d.Status().Running {
		t.Fatal("daemon not reported running")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon still reported running after stop")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Workflow.MinFreeSpaceMiB = 1
	})
	first := newTestDaemon(t, cfg)
	second := newTestDaemon(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second instance acquired the lock")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("start after release: %v", err)
	}
	second.Stop()
}
