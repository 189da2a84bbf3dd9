package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
  frontend_origin: "https://app.example.com"
store:
  path: "/tmp/rf.db"
tasks:
  retention: 2h
  sweep_schedule: "@every 5m"
oauth:
  client_id: "cid"
  client_secret: "cs"
  state_secret: "ss"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.TaskRetention() != 2*time.Hour {
		t.Errorf("TaskRetention = %v, want 2h", cfg.TaskRetention())
	}
	if cfg.OAuth.RedirectURI == "" {
		t.Error("RedirectURI default not applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.TaskRetention() != 24*time.Hour {
		t.Errorf("TaskRetention = %v, want 24h", cfg.TaskRetention())
	}
	if cfg.Tasks.SweepSchedule != "@every 10m" {
		t.Errorf("SweepSchedule = %q", cfg.Tasks.SweepSchedule)
	}
}
