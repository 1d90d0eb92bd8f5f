package daemon_test

import (
	"context"
	"os"
	"testing"

	"tagsmith/internal/daemon"
	"tagsmith/internal/logging"
	"tagsmith/internal/testsupport"
)

func TestStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	store := testsupport.NewStore(t, cfg)

	d, err := daemon.New(cfg, store, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if d.APIAddr() == "" {
		t.Fatal("expected bound API address")
	}

	status := d.Status()
	if !status.Running || status.TagCount != 2 || status.EnabledCount != 1 {
		t.Fatalf("Status = %+v", status)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon should report stopped")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	store := testsupport.NewStore(t, cfg)

	first, err := daemon.New(cfg, store, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer first.Close()

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cfg2 := *cfg
	cfg2.Paths.APIBind = "127.0.0.1:0"
	second, err := daemon.New(&cfg2, store, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	defer second.Close()

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second instance must fail to acquire the lock")
	}
}
