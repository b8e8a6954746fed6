// Package config loads mnemo settings from a YAML file and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/mnemo/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the full set of mnemo settings.
type Config struct {
	Corpus        string `mapstructure:"corpus" yaml:"corpus"`
	Order         int    `mapstructure:"order" yaml:"order"`
	Count         int    `mapstructure:"count" yaml:"count"`
	SentenceLimit int    `mapstructure:"sentence_limit" yaml:"sentence_limit"`
	// Seed makes sampling reproducible. Zero draws from the shared generator.
	Seed        uint64 `mapstructure:"seed" yaml:"seed"`
	Diagnostics bool   `mapstructure:"diagnostics" yaml:"diagnostics"`

	Filter FilterConfig `mapstructure:"filter" yaml:"filter"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type FilterConfig struct {
	MinWordLength int    `mapstructure:"min_word_length" yaml:"min_word_length"`
	StopWords     string `mapstructure:"stop_words" yaml:"stop_words"`
	RequireEnd    bool   `mapstructure:"require_end" yaml:"require_end"`
}

type CacheConfig struct {
	Backend  string       `mapstructure:"backend" yaml:"backend"`
	Dir      string       `mapstructure:"dir" yaml:"dir"`
	ReadOnly bool         `mapstructure:"read_only" yaml:"read_only"`
	Redis    RedisConfig  `mapstructure:"redis" yaml:"redis"`
	SQLite   SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	// Lock serializes training across processes sharing the same Redis.
	Lock bool `mapstructure:"lock" yaml:"lock"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type ServerConfig struct {
	HTTPPort   int `mapstructure:"http_port" yaml:"http_port"`
	SocketPort int `mapstructure:"socket_port" yaml:"socket_port"`
	MCPPort    int `mapstructure:"mcp_port" yaml:"mcp_port"`
	Workers    int `mapstructure:"workers" yaml:"workers"`
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns the settings used when neither file nor flags name a value.
func Defaults() map[string]any {
	return map[string]any{
		"order":          1,
		"count":          1,
		"sentence_limit": 0,
		"seed":           0,
		"diagnostics":    false,
		"filter": map[string]any{
			"min_word_length": 0,
			"stop_words":      "none",
			"require_end":     true,
		},
		"cache": map[string]any{
			"backend":   BackendFile,
			"dir":       ".mnemo/cache",
			"read_only": false,
			"redis": map[string]any{
				"addr":   "localhost:6379",
				"db":     0,
				"ttl":    "0s",
				"prefix": "mnemo:model:",
				"lock":   false,
			},
			"sqlite": map[string]any{
				"path": ".mnemo/models.db",
			},
		},
		"server": map[string]any{
			"http_port":   8080,
			"socket_port": 7799,
			"mcp_port":    8081,
			"workers":     2,
			"buffer_size": 4096,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
	}
}

// Load merges the defaults, the YAML file at path (skipped when empty) and the
// overrides, then decodes and validates the result. Override keys may be dotted
// ("cache.backend").
func Load(path string, overrides map[string]any) (*Config, error) {
	merged := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		merge(merged, file)
	}

	for key, value := range overrides {
		set(merged, strings.Split(key, "."), value)
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(merged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.Order < 1 {
		errs = append(errs, fmt.Errorf("order must be positive, got %d", c.Order))
	}
	if c.Count < 1 {
		errs = append(errs, fmt.Errorf("count must be positive, got %d", c.Count))
	}
	switch c.Filter.StopWords {
	case "", "none", "english":
	default:
		errs = append(errs, fmt.Errorf("unknown stop word list %q", c.Filter.StopWords))
	}
	switch c.Cache.Backend {
	case BackendNone, BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	if c.Server.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Server.Workers))
	}
	if c.Server.BufferSize < 1 {
		errs = append(errs, fmt.Errorf("buffer_size must be positive, got %d", c.Server.BufferSize))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

func set(m map[string]any, path []string, value any) {
	for _, key := range path[:len(path)-1] {
		sub, ok := m[key].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[key] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = value
}
