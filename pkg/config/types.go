package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Responder ResponderConfig `yaml:"responder"`
	Logging   LoggingConfig   `yaml:"logging"`
	Debug     DebugConfig     `yaml:"debug"`
	Retention RetentionConfig `yaml:"retention"`
}

// StorageConfig holds pebble storage settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
	// WarnSize triggers a log warning from the debug stats endpoint when the
	// on-disk store grows past it (e.g. "64MB").
	WarnSize SizeBytes `yaml:"warn_size"`
}

// ResponderConfig holds the autoresponder table location and reply tuning.
type ResponderConfig struct {
	TablePath string `yaml:"table_path"`
	// RPS/Burst bound how often the persona will engage per conversation.
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// Optional delay overrides; zero values keep the built-in ranges.
	ReactionMin Duration `yaml:"reaction_min"`
	ReactionMax Duration `yaml:"reaction_max"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DebugConfig holds the local read-only inspection listener settings.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// RetentionConfig holds configuration for the automatic purge runner.
type RetentionConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Cron         string `yaml:"cron"`
	Period       string `yaml:"period"`
	BatchSize    int    `yaml:"batch_size"`
	BatchSleepMs int    `yaml:"batch_sleep_ms"`
	DryRun       bool   `yaml:"dry_run"`
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly strings like "64MB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*s = 0
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*s = SizeBytes(v)
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(i)
		return nil
	}
	return fmt.Errorf("invalid size value: %q", node.Value)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

// Duration is a wrapper around time.Duration that supports YAML parsing from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
