// Package config holds the SDK's tunable knobs and their YAML loading.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config collects every tunable across the session cache, memory manager,
// chunker, and context assembly. Zero values are filled from Default by
// Load; hand-built configs should start from Default too.
type Config struct {
	// Session cache.
	MaxCacheSize         int `yaml:"max_cache_size"`
	TTLSeconds           int `yaml:"ttl_seconds"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`

	// Memory manager.
	MaxShortTermRounds    int `yaml:"max_short_term_rounds"`
	CompressRounds        int `yaml:"compress_rounds"`
	RetrievalTopK         int `yaml:"retrieval_top_k"`
	LongTermSummaryWindow int `yaml:"long_term_summary_window"`

	// Context assembly.
	ContextCharCeiling    int `yaml:"context_char_ceiling"`
	MaxTranscriptMessages int `yaml:"max_transcript_messages"`

	// Chunking.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		MaxCacheSize:          10,
		TTLSeconds:            3600,
		SweepIntervalSeconds:  300,
		MaxShortTermRounds:    5,
		CompressRounds:        3,
		RetrievalTopK:         3,
		LongTermSummaryWindow: 5,
		ContextCharCeiling:    8000,
		MaxTranscriptMessages: 0,
		ChunkSize:             800,
		ChunkOverlap:          100,
	}
}

// Load reads a YAML config file and merges it over Default. Fields absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that would misbehave at runtime rather
// than letting them fail later mid-session.
func (c Config) Validate() error {
	if c.MaxCacheSize <= 0 {
		return fmt.Errorf("max_cache_size must be positive, got %d", c.MaxCacheSize)
	}
	if c.TTLSeconds <= 0 {
		return fmt.Errorf("ttl_seconds must be positive, got %d", c.TTLSeconds)
	}
	if c.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("sweep_interval_seconds must be positive, got %d", c.SweepIntervalSeconds)
	}
	if c.MaxShortTermRounds < 1 {
		return fmt.Errorf("max_short_term_rounds must be at least 1, got %d", c.MaxShortTermRounds)
	}
	if c.CompressRounds < 1 {
		return fmt.Errorf("compress_rounds must be at least 1, got %d", c.CompressRounds)
	}
	if c.RetrievalTopK < 0 {
		return fmt.Errorf("retrieval_top_k must not be negative, got %d", c.RetrievalTopK)
	}
	if c.LongTermSummaryWindow < 1 {
		return fmt.Errorf("long_term_summary_window must be at least 1, got %d", c.LongTermSummaryWindow)
	}
	if c.ContextCharCeiling < 0 {
		return fmt.Errorf("context_char_ceiling must not be negative, got %d", c.ContextCharCeiling)
	}
	if c.MaxTranscriptMessages < 0 {
		return fmt.Errorf("max_transcript_messages must not be negative, got %d", c.MaxTranscriptMessages)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d with chunk_size %d", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}
