package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default("/tmp/planner-data")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Storage.DataDir != "/tmp/planner-data" {
		t.Fatalf("unexpected data dir %q", cfg.Storage.DataDir)
	}
	if cfg.Storage.File != "planner.db" {
		t.Fatalf("unexpected file %q", cfg.Storage.File)
	}
	if cfg.Defaults.TaskStatus != "Inbox" || cfg.Defaults.ProjectKind != "Active" {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if cfg.Storage.StrictLists {
		t.Fatalf("expected lenient list decoding by default")
	}
}

func TestFromYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := FromYAML([]byte("storage:\n  strict_lists: true\n"))
	if err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	if !cfg.Storage.StrictLists {
		t.Fatalf("expected strict_lists true")
	}
	if cfg.Storage.File != "planner.db" || cfg.Defaults.TaskStatus != "Inbox" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"empty file":     "storage:\n  file: \"\"\n",
		"path as file":   "storage:\n  file: sub/planner.db\n",
		"empty status":   "defaults:\n  task_status: \"\"\n",
		"empty kind":     "defaults:\n  project_kind: \"\"\n",
		"bad log level":  "log:\n  level: loud\n",
		"malformed yaml": "storage: [\n",
	}
	for name, doc := range cases {
		if _, err := FromYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadOptionalAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	cfg, err := LoadOptional(path, dir)
	if err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg.Storage.DataDir != dir {
		t.Fatalf("expected data dir %s, got %s", dir, cfg.Storage.DataDir)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if err := os.WriteFile(path, []byte(GenerateDefault(dir)), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Storage.DataDir != dir {
		t.Fatalf("expected data dir %s, got %s", dir, loaded.Storage.DataDir)
	}
	if filepath.Base(path) != FileName {
		t.Fatalf("unexpected config file name %s", path)
	}
}
