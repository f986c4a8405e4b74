package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convo.yaml")
	data := []byte("max_cache_size: 25\nttl_seconds: 60\nchunk_size: 400\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MaxCacheSize != 25 {
		t.Errorf("expected override 25, got %d", cfg.MaxCacheSize)
	}
	if cfg.TTLSeconds != 60 {
		t.Errorf("expected override 60, got %d", cfg.TTLSeconds)
	}
	if cfg.ChunkSize != 400 {
		t.Errorf("expected override 400, got %d", cfg.ChunkSize)
	}
	// Untouched fields keep their defaults.
	if cfg.MaxShortTermRounds != Default().MaxShortTermRounds {
		t.Errorf("expected default rounds, got %d", cfg.MaxShortTermRounds)
	}
	if cfg.ChunkOverlap != Default().ChunkOverlap {
		t.Errorf("expected default overlap, got %d", cfg.ChunkOverlap)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convo.yaml")
	data := []byte("chunk_size: 100\nchunk_overlap: 100\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected overlap >= size to fail validation")
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cache size", func(c *Config) { c.MaxCacheSize = 0 }},
		{"zero ttl", func(c *Config) { c.TTLSeconds = 0 }},
		{"zero sweep interval", func(c *Config) { c.SweepIntervalSeconds = 0 }},
		{"zero rounds", func(c *Config) { c.MaxShortTermRounds = 0 }},
		{"zero compress", func(c *Config) { c.CompressRounds = 0 }},
		{"negative topK", func(c *Config) { c.RetrievalTopK = -1 }},
		{"zero summary window", func(c *Config) { c.LongTermSummaryWindow = 0 }},
		{"negative ceiling", func(c *Config) { c.ContextCharCeiling = -1 }},
		{"negative transcript cap", func(c *Config) { c.MaxTranscriptMessages = -1 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation failure")
			}
		})
	}
}
