// Package config loads adapter configuration from files and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/agent-memory/domain/config"
)

// Loader loads adapter configuration from files.
type Loader struct {
	// ExpandEnv enables environment variable expansion.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// Validate enables configuration validation.
	Validate bool
}

// NewLoader creates a new configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		Validate:  true,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// LoadFile loads configuration from a file path. The format follows the
// file extension.
func (l *Loader) LoadFile(path string) (*config.AdapterConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	var format Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// Load loads configuration from a reader. Defaults are applied before
// validation.
func (l *Loader) Load(r io.Reader, format Format) (*config.AdapterConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.ExpandEnv {
		expander := &envExpander{strict: l.StrictEnv}
		expanded, err := expander.Expand(string(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrEnvExpansionFailed, err)
		}
		data = []byte(expanded)
	}

	cfg := &config.AdapterConfig{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}

	return l.finish(cfg)
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*config.AdapterConfig, error) {
	return l.Load(strings.NewReader(content), format)
}

// LoadBytes loads configuration from bytes.
func (l *Loader) LoadBytes(data []byte, format Format) (*config.AdapterConfig, error) {
	return l.Load(bytes.NewReader(data), format)
}

func (l *Loader) finish(cfg *config.AdapterConfig) (*config.AdapterConfig, error) {
	cfg.ApplyDefaults()
	if l.Validate {
		if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
			return nil, fmt.Errorf("%w: %w", config.ErrValidationFailed, errs)
		}
	}
	return cfg, nil
}

// Environment variables read by FromEnv.
const (
	EnvURL        = "QDRANT_URL"
	EnvAPIKey     = "QDRANT_API_KEY"
	EnvPort       = "QDRANT_PORT"
	EnvVectorSize = "VECTOR_SIZE"
	EnvCollection = "QDRANT_COLLECTION"
)

// FromEnv builds a configuration from the process environment.
func (l *Loader) FromEnv() (*config.AdapterConfig, error) {
	return l.fromLookup(os.LookupEnv)
}

func (l *Loader) fromLookup(lookup func(string) (string, bool)) (*config.AdapterConfig, error) {
	get := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	cfg := &config.AdapterConfig{
		URL:        get(EnvURL),
		APIKey:     get(EnvAPIKey),
		Collection: get(EnvCollection),
	}

	var err error
	if cfg.Port, err = atoiEnv(EnvPort, get(EnvPort)); err != nil {
		return nil, err
	}
	if cfg.VectorSize, err = atoiEnv(EnvVectorSize, get(EnvVectorSize)); err != nil {
		return nil, err
	}

	return l.finish(cfg)
}

// atoiEnv parses an integer variable. Empty means unset.
func atoiEnv(name, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", config.ErrInvalidSetting, name, value)
	}
	return n, nil
}
