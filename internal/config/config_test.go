package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if len(cfg.Records) != 2 {
			t.Fatalf("expected 2 record files, got %d", len(cfg.Records))
		}
		if cfg.Log.Level != "debug" {
			t.Fatalf("expected level to be lowercased, got %q", cfg.Log.Level)
		}
		if cfg.Log.Format != "text" {
			t.Fatalf("expected default format text, got %q", cfg.Log.Format)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nsnapshot: run.yaml\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\nsnapshot: run.yaml\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("empty records entry", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nsnapshot: run.yaml\nrecords: [\"\"]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nsnapshot: run.yaml\nlog:\n  level: loud\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid log format", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nsnapshot: run.yaml\nlog:\n  format: xml\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid endpoint constraint", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nsnapshot: run.yaml\nvalidate:\n  endpoint_constraint: \"not a constraint\"\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
