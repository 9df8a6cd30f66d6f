package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("default http port = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.InitialCredits != 50 || cfg.FailedThreshold != 5 {
		t.Fatalf("unexpected policy defaults: %+v", cfg)
	}
	if cfg.LockWindow != 5*time.Minute || cfg.RecoveryCooldown != 24*time.Hour {
		t.Fatalf("unexpected window defaults: %+v", cfg)
	}
	if cfg.NotificationCap != 50 {
		t.Fatalf("default notification cap = %d, want 50", cfg.NotificationCap)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
service:
  http_port: 9999
store:
  path: /data/genius.db
policy:
  initial_credits: 20
  lock_window_minutes: 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("INITIAL_CREDITS", "30")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "424242")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Fatalf("file http port not applied: %d", cfg.HTTPPort)
	}
	if cfg.StorePath != "/data/genius.db" {
		t.Fatalf("file store path not applied: %s", cfg.StorePath)
	}
	if cfg.InitialCredits != 30 {
		t.Fatalf("env should override file, got %d", cfg.InitialCredits)
	}
	if cfg.LockWindow != 10*time.Minute {
		t.Fatalf("file lock window not applied: %s", cfg.LockWindow)
	}
	if cfg.AdminChatID != 424242 {
		t.Fatalf("env admin chat id not applied: %d", cfg.AdminChatID)
	}
}
