package model

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PollIntervalSec != 15 {
		t.Errorf("poll interval = %d, want 15", cfg.PollIntervalSec)
	}
	if cfg.DownloadDir == "" {
		t.Error("download dir should default to a non-empty path")
	}
	if cfg.MailboxAddress != "" {
		t.Errorf("mailbox address should be empty, got %q", cfg.MailboxAddress)
	}
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	in := &AppConfig{
		ServerURL:       "https://mail.example.test",
		MailboxAddress:  "box@tmp.test",
		PollIntervalSec: 30,
		DownloadDir:     "/tmp/downloads",
		Display: DisplayConfig{
			Theme:       "default",
			ShowPreview: true,
		},
	}
	if err := SaveConfig(path, in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.ServerURL != in.ServerURL {
		t.Errorf("server url = %q", out.ServerURL)
	}
	if out.MailboxAddress != in.MailboxAddress {
		t.Errorf("mailbox = %q", out.MailboxAddress)
	}
	if out.PollIntervalSec != 30 {
		t.Errorf("poll interval = %d", out.PollIntervalSec)
	}
	if out.DownloadDir != "/tmp/downloads" {
		t.Errorf("download dir = %q", out.DownloadDir)
	}
}

func TestLoadConfigClampsPollInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &AppConfig{PollIntervalSec: -5}
	if err := SaveConfig(path, in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.PollIntervalSec != 15 {
		t.Errorf("poll interval = %d, want default 15", out.PollIntervalSec)
	}
}
