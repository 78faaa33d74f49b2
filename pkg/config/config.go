// Package config holds application settings, loaded from an optional JSON
// settings file and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/jmhart/lexiread/pkg/dictionary"
)

// Config is the root application configuration.
// Priority: ENV > settings file > defaults (via env-default tags).
type Config struct {
	// DataDir is where the word store, chunk cache and vocabulary live.
	DataDir string `json:"data_dir" env:"LEXIREAD_DATA_DIR"`

	Dictionary DictionaryConfig `json:"dictionary"`
	Analyzer   AnalyzerConfig   `json:"analyzer"`
}

// DictionaryConfig holds chunked-dictionary loading settings.
type DictionaryConfig struct {
	MetadataURL    string `json:"metadata_url"    env:"LEXIREAD_METADATA_URL"    env-default:"https://cdn.lexiread.dev/dict/metadata.json"`
	ChunkBaseURL   string `json:"chunk_base_url"  env:"LEXIREAD_CHUNK_BASE_URL"  env-default:"https://cdn.lexiread.dev/dict/"`
	APIURL         string `json:"api_url"         env:"LEXIREAD_API_URL"`
	PriorityChunks int    `json:"priority_chunks" env:"LEXIREAD_PRIORITY_CHUNKS" env-default:"2"`
	CacheSize      int    `json:"cache_size"      env:"LEXIREAD_CACHE_SIZE"      env-default:"10000"`
}

// AnalyzerConfig holds text analysis settings.
type AnalyzerConfig struct {
	DifficultyLevel string `json:"difficulty_level" env:"LEXIREAD_DIFFICULTY_LEVEL" env-default:"intermediate"`
	HighlightMode   string `json:"highlight_mode"   env:"LEXIREAD_HIGHLIGHT_MODE"   env-default:"unknown"`
	Workers         int    `json:"workers"          env:"LEXIREAD_WORKERS"          env-default:"4"`
}

// SettingsFileName is the settings file looked up under the data dir.
const SettingsFileName = "settings.json"

// Load reads configuration from path and the environment. An empty path
// falls back to <default data dir>/settings.json; a missing file is fine,
// defaults and ENV still apply.
func Load(path string) (*Config, error) {
	var cfg Config
	explicitPath := path != ""
	if !explicitPath {
		path = filepath.Join(defaultDataDir(), SettingsFileName)
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Dictionary.PriorityChunks < 1 {
		return fmt.Errorf("priority_chunks must be at least 1, got %d", c.Dictionary.PriorityChunks)
	}
	if c.Dictionary.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.Dictionary.CacheSize)
	}
	if c.Analyzer.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Analyzer.Workers)
	}
	return nil
}

// Save persists the configuration as the settings file under the data dir.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("config: create data dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(c.DataDir, SettingsFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// WordStorePath is the on-disk word store database.
func (c *Config) WordStorePath() string {
	return filepath.Join(c.DataDir, "words.db")
}

// ChunkCachePath is the chunk cache database.
func (c *Config) ChunkCachePath() string {
	return filepath.Join(c.DataDir, dictionary.CacheFileName)
}

// VocabPath is the vocabulary JSON file.
func (c *Config) VocabPath() string {
	return filepath.Join(c.DataDir, "vocabulary.json")
}

func defaultDataDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "lexiread")
	}
	return ".lexiread"
}
