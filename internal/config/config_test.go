package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSettings(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("DefaultConfigDir() = %s", got)
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	t.Setenv(EnvDSN, "")
	cfg, _ := New(t.TempDir())
	if err := cfg.LoadSettings(); err != nil {
		t.Fatalf("missing config.toml should not fail: %v", err)
	}
	if cfg.Settings != (Settings{}) {
		t.Errorf("Settings = %+v, want zero", cfg.Settings)
	}
	if cfg.GoogleList() != DefaultGoogleList {
		t.Errorf("GoogleList() = %s", cfg.GoogleList())
	}
	if cfg.StoragePath() != filepath.Join(cfg.Dir, StorageFile) {
		t.Errorf("StoragePath() = %s", cfg.StoragePath())
	}
}

func TestLoadSettings_Values(t *testing.T) {
	t.Setenv(EnvDSN, "")
	dir := t.TempDir()
	writeSettings(t, dir, `
page_size = 5
strict_sort = true

[storage]
backend = "mysql"
key = "work_tasks"
file = "data/tasks.json"
dsn = "u:p@tcp(db:3306)/tm"
quota_bytes = 1024

[google]
list = "Inbox"
`)
	cfg, _ := New(dir)
	if err := cfg.LoadSettings(); err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	s := cfg.Settings
	if s.PageSize != 5 || !s.StrictSort {
		t.Errorf("top-level = %+v", s)
	}
	if s.Storage.Backend != "mysql" || s.Storage.Key != "work_tasks" || s.Storage.QuotaBytes != 1024 {
		t.Errorf("storage = %+v", s.Storage)
	}
	if cfg.StoragePath() != filepath.Join(dir, "data", "tasks.json") {
		t.Errorf("StoragePath() = %s", cfg.StoragePath())
	}
	if cfg.GoogleList() != "Inbox" {
		t.Errorf("GoogleList() = %s", cfg.GoogleList())
	}
}

func TestLoadSettings_EnvDSN(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "[storage]\ndsn = \"from-file\"\n")
	t.Setenv(EnvDSN, "from-env")

	cfg, _ := New(dir)
	if err := cfg.LoadSettings(); err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if cfg.Settings.Storage.DSN != "from-env" {
		t.Errorf("DSN = %s, want from-env", cfg.Settings.Storage.DSN)
	}
}

func TestLoadSettings_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "page_sise = 3\n", "page_sise"},
		{"syntax", "page_size = \n", "invalid config.toml"},
		{"negative page", "page_size = -1\n", "page_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSettings(t, dir, tt.body)
			cfg, _ := New(dir)
			err := cfg.LoadSettings()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDebugf(t *testing.T) {
	cfg, _ := New(t.TempDir())
	var buf bytes.Buffer
	cfg.SetDebugOutput(&buf)

	cfg.Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("debug off should log nothing, got %q", buf.String())
	}

	cfg.Debug = true
	cfg.Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "debug: ") || !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("debug output = %q", buf.String())
	}
}

func TestTokenFiles(t *testing.T) {
	cfg, _ := New(t.TempDir())
	if cfg.HasToken() || cfg.HasOAuthClient() {
		t.Fatal("fresh dir should have no credentials")
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.HasToken() {
		t.Error("HasToken() = false after write")
	}
	if err := cfg.RemoveToken(); err != nil || cfg.HasToken() {
		t.Errorf("RemoveToken: %v, HasToken=%v", err, cfg.HasToken())
	}
}
