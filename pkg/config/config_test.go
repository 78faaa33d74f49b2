package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dictionary.PriorityChunks != 2 {
		t.Errorf("PriorityChunks = %d, want 2", cfg.Dictionary.PriorityChunks)
	}
	if cfg.Dictionary.CacheSize != 10000 {
		t.Errorf("CacheSize = %d, want 10000", cfg.Dictionary.CacheSize)
	}
	if cfg.Analyzer.DifficultyLevel != "intermediate" {
		t.Errorf("DifficultyLevel = %q", cfg.Analyzer.DifficultyLevel)
	}
	if cfg.Analyzer.HighlightMode != "unknown" {
		t.Errorf("HighlightMode = %q", cfg.Analyzer.HighlightMode)
	}
	if cfg.DataDir == "" {
		t.Error("DataDir not defaulted")
	}
}

func TestLoadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	payload := `{
  "data_dir": "` + dir + `",
  "dictionary": {"priority_chunks": 5, "cache_size": 100},
  "analyzer": {"difficulty_level": "advanced", "workers": 2}
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dictionary.PriorityChunks != 5 || cfg.Dictionary.CacheSize != 100 {
		t.Errorf("dictionary settings not applied: %+v", cfg.Dictionary)
	}
	if cfg.Analyzer.DifficultyLevel != "advanced" || cfg.Analyzer.Workers != 2 {
		t.Errorf("analyzer settings not applied: %+v", cfg.Analyzer)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	if err := os.WriteFile(path, []byte(`{"dictionary": {"priority_chunks": 5}}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	t.Setenv("LEXIREAD_PRIORITY_CHUNKS", "7")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dictionary.PriorityChunks != 7 {
		t.Errorf("PriorityChunks = %d, want env override 7", cfg.Dictionary.PriorityChunks)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing explicit settings file")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("LEXIREAD_PRIORITY_CHUNKS", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for priority_chunks=0")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.DataDir = dir
	cfg.Analyzer.DifficultyLevel = "expert"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := Load(filepath.Join(dir, SettingsFileName))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Analyzer.DifficultyLevel != "expert" {
		t.Errorf("DifficultyLevel = %q, want expert", reloaded.Analyzer.DifficultyLevel)
	}
	if reloaded.WordStorePath() != filepath.Join(dir, "words.db") {
		t.Errorf("WordStorePath = %q", reloaded.WordStorePath())
	}
}
