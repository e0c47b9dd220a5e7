package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// mapSecrets is an in-memory SecretSource.
type mapSecrets map[string]string

func (m mapSecrets) Get(name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
data_dir: /var/lib/jobboard
seed: false
admin:
  user_id: ADMIN_1
telegram:
  token: "123:abc"
  chat_id: "-100"
  disable_preview: true
ai:
  api_key: key
  poll_interval: 5s
  max_polls: 12
server:
  listen: ":9000"
log:
  file: /tmp/jobboard.log
  max_backups: 3
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/jobboard" || cfg.Seed {
		t.Errorf("DataDir/Seed = %q/%v", cfg.DataDir, cfg.Seed)
	}
	if cfg.Admin.UserID != "ADMIN_1" {
		t.Errorf("Admin.UserID = %q", cfg.Admin.UserID)
	}
	if !cfg.Telegram.Enabled() || cfg.Telegram.ChatID != "-100" || !cfg.Telegram.DisablePreview {
		t.Errorf("Telegram = %+v", cfg.Telegram)
	}
	if cfg.AI.PollInterval != 5*time.Second || cfg.AI.MaxPolls != 12 {
		t.Errorf("AI poll = %v x %d", cfg.AI.PollInterval, cfg.AI.MaxPolls)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
	if cfg.Log.File != "/tmp/jobboard.log" || cfg.Log.MaxBackups != 3 || cfg.Log.MaxSizeMB != 10 {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
data_dir = "boarddata"

[ai]
poll_interval = "2s"
max_polls = 3

[telegram]
token = "t"
chat_id = "1"
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "boarddata" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.AI.PollInterval != 2*time.Second || cfg.AI.MaxPolls != 3 {
		t.Errorf("AI poll = %v x %d", cfg.AI.PollInterval, cfg.AI.MaxPolls)
	}
	if cfg.Telegram.DisablePreview {
		t.Error("link previews should be on by default")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", "{}\n"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.PollInterval != DefaultPollInterval || cfg.AI.MaxPolls != DefaultMaxPolls {
		t.Errorf("poll defaults = %v x %d", cfg.AI.PollInterval, cfg.AI.MaxPolls)
	}
	if cfg.Admin.UserID != DefaultAdminID {
		t.Errorf("Admin.UserID = %q", cfg.Admin.UserID)
	}
	if cfg.AI.ImageModel != DefaultImageModel || cfg.AI.VideoModel != DefaultVideoModel {
		t.Errorf("models = %q, %q", cfg.AI.ImageModel, cfg.AI.VideoModel)
	}
	if !cfg.Seed {
		t.Error("Seed should default to true")
	}
	if cfg.Telegram.Enabled() {
		t.Error("Telegram should be disabled without a token")
	}
	if *cfg != *Default() {
		t.Errorf("empty file should equal Default(): %+v", cfg)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("JOBBOARD_TEST_AI_KEY", "from-env")
	cfg, err := Load(writeConfig(t, "config.yaml", "ai:\n  api_key: ${JOBBOARD_TEST_AI_KEY}\n"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.AI.APIKey)
	}
}

func TestLoad_SecretsFillMissingCredentials(t *testing.T) {
	path := writeConfig(t, "config.yaml", "telegram:\n  chat_id: \"42\"\nai:\n  api_key: file-key\n")
	src := mapSecrets{SecretTelegramToken: "kr-token", SecretAIKey: "kr-key"}

	cfg, err := Load(path, src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "kr-token" {
		t.Errorf("Token = %q, want keyring value", cfg.Telegram.Token)
	}
	if cfg.AI.APIKey != "file-key" {
		t.Errorf("APIKey = %q, file value must win", cfg.AI.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"), nil)
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "bad.yaml", "data_dir: [broken"), nil)
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "bad.toml", "data_dir = "), nil)
	if err == nil {
		t.Fatal("Load: expected error for invalid TOML")
	}
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", "ai:\n  poll_interval: soon\n"},
		{"zero interval", "ai:\n  poll_interval: 0s\n"},
		{"negative polls", "ai:\n  max_polls: -1\n"},
		{"token without chat", "telegram:\n  token: abc\n"},
		{"negative rate", "ai:\n  requests_per_second: -2\n"},
		{"negative write limit", "server:\n  write_limit: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", tt.content), nil); err == nil {
				t.Fatal("Load: expected error")
			}
		})
	}
}
