package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[account]
name = "testaccount"

[publish]
access_token = "token-123"
user_id = "1784"
public_base_url = "https://tunnel.example.com"
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Publish.GraphBaseURL != defaultGraphBaseURL {
		t.Fatalf("expected default graph base url, got %q", cfg.Publish.GraphBaseURL)
	}
	if cfg.Transcode.TopStrip != defaultTopStrip || cfg.Transcode.MaxDuration != defaultMaxDuration {
		t.Fatalf("transcode defaults not applied: %+v", cfg.Transcode)
	}
	if cfg.Scheduler.PostInterval != defaultPostInterval {
		t.Fatalf("scheduler default not applied: %d", cfg.Scheduler.PostInterval)
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
[account]
name = "testaccount"
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "publish.access_token") {
		t.Fatalf("expected access token validation error, got %v", err)
	}
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	t.Setenv("RP_ACCESS_TOKEN", "env-token")
	t.Setenv("RP_USER_ID", "env-user")
	t.Setenv("RP_PUBLIC_BASE_URL", "https://env.example.com")

	path := writeConfig(t, `
[account]
name = "testaccount"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Publish.AccessToken != "env-token" || cfg.Publish.UserID != "env-user" {
		t.Fatalf("env overrides not applied: %+v", cfg.Publish)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	path := writeConfig(t, `
[account]
name = "testaccount"

[publish]
access_token = "t"
user_id = "u"
public_base_url = "not a url"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for malformed public_base_url")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := expandPath("~/reels")
	if err != nil {
		t.Fatalf("expandPath failed: %v", err)
	}
	if got != filepath.Join(home, "reels") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := writeConfig(t, "# existing")
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
	fresh := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := WriteSample(fresh); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	data, err := os.ReadFile(fresh)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[publish]") {
		t.Fatal("sample config missing publish section")
	}
}
