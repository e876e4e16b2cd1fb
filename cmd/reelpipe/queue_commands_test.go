package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpipe/internal/pipeline"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`
[paths]
data_dir = %q
download_dir = %q
log_dir = %q

[account]
name = "cli-test"

[publish]
access_token = "token"
user_id = "user"
public_base_url = "https://cdn.test.invalid"
`, filepath.Join(base, "data"), filepath.Join(base, "downloads"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestQueueAddAndList(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "queue", "add", "tiktok", "https://www.tiktok.com/@a/video/1")
	if err != nil {
		t.Fatalf("queue add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Added item 1") {
		t.Fatalf("unexpected add output: %s", out)
	}

	out, err = runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "tiktok") || !strings.Contains(out, "logo_only") {
		t.Fatalf("list must show source and defaulted preset:\n%s", out)
	}
}

func TestQueueAddRejectsUnknownSource(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCLI(t, configPath, "queue", "add", "vimeo", "https://vimeo.com/1")
	if err == nil {
		t.Fatalf("expected error for unknown source, got output:\n%s", out)
	}
}

func TestQueueImportCSV(t *testing.T) {
	configPath := writeTestConfig(t)

	csvPath := filepath.Join(t.TempDir(), "batch.csv")
	content := "source,url,caption_strategy,caption,preset\n" +
		"tiktok,https://www.tiktok.com/@a/video/1,,,\n" +
		"twitter,https://x.com/p/2,custom,hello there,caption_top\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out, err := runCLI(t, configPath, "queue", "import", csvPath)
	if err != nil {
		t.Fatalf("queue import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 2 items") {
		t.Fatalf("unexpected import output: %s", out)
	}

	out, err = runCLI(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2") {
		t.Fatalf("status must count imported items:\n%s", out)
	}
}

func TestQueueImportAtomicOnBadRow(t *testing.T) {
	configPath := writeTestConfig(t)

	csvPath := filepath.Join(t.TempDir(), "batch.csv")
	content := "tiktok,https://www.tiktok.com/@a/video/1\n" +
		"vimeo,https://vimeo.com/2\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if out, err := runCLI(t, configPath, "queue", "import", csvPath); err == nil {
		t.Fatalf("expected import failure, got:\n%s", out)
	}

	out, err := runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("bad row must reject the whole file:\n%s", out)
	}
}

func TestQueueRemove(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, configPath, "queue", "add", "twitter", "https://x.com/p/1"); err != nil {
		t.Fatalf("queue add: %v", err)
	}
	out, err := runCLI(t, configPath, "queue", "remove", "1")
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	if !strings.Contains(out, "Removed 1 items") {
		t.Fatalf("unexpected remove output: %s", out)
	}
}

func TestRunCommandEmptyQueueExitCode(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCLI(t, configPath, "run")
	var exitErr *exitCodeError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exit code error, got %v", err)
	}
	if exitErr.code != pipeline.ExitEmptyQueue {
		t.Fatalf("expected exit %d for empty queue, got %d", pipeline.ExitEmptyQueue, exitErr.code)
	}
}

func TestParseImportCSVVariants(t *testing.T) {
	items, err := parseImportCSV(strings.NewReader(
		"tiktok,https://t/1\ntwitter,https://t/2,from_source\n"))
	if err != nil {
		t.Fatalf("parseImportCSV: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].CaptionStrategy != "from_source" {
		t.Fatalf("caption strategy not parsed: %+v", items[1])
	}

	if _, err := parseImportCSV(strings.NewReader("tiktok\n")); err == nil {
		t.Fatal("short row must fail")
	}
}
