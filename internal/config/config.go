// Package config loads .lpcfmt.toml or .lpcfmt.yaml and maps it onto the
// formatting options and the orchestrator settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"lpcfmt/internal/format"
	"lpcfmt/internal/orchestrator"
	"lpcfmt/internal/validate"
)

// File names probed by Find, in order.
var Names = []string{".lpcfmt.toml", ".lpcfmt.yaml", ".lpcfmt.yml"}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Pipeline are the orchestrator knobs exposed in the file.
type Pipeline struct {
	DefaultStrategy             string        `toml:"default_strategy" yaml:"default_strategy" validate:"required"`
	EnableCache                 bool          `toml:"enable_cache" yaml:"enable_cache"`
	CacheTTL                    time.Duration `toml:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	MaxCacheSize                int           `toml:"max_cache_size" yaml:"max_cache_size" validate:"gte=1"`
	CleanupInterval             time.Duration `toml:"cleanup_interval" yaml:"cleanup_interval"`
	EnablePerformanceMonitoring bool          `toml:"enable_performance_monitoring" yaml:"enable_performance_monitoring"`
	MaxNodeCount                int           `toml:"max_node_count" yaml:"max_node_count" validate:"gte=1"`
	Timeout                     time.Duration `toml:"timeout" yaml:"timeout" validate:"gte=0"`
	EnableValidation            bool          `toml:"enable_validation" yaml:"enable_validation"`
	EnforceValidation           bool          `toml:"enforce_validation" yaml:"enforce_validation"`
	// CacheFile persists the result cache between runs; empty disables it.
	CacheFile string `toml:"cache_file" yaml:"cache_file"`
	Jobs      int    `toml:"jobs" yaml:"jobs" validate:"gte=0"`
}

// Log selects the logger.
type Log struct {
	Level  string `toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `toml:"format" yaml:"format" validate:"omitempty,oneof=console json CONSOLE JSON"`
}

// Config is the whole file.
type Config struct {
	Format     format.Options  `toml:"format" yaml:"format"`
	Pipeline   Pipeline        `toml:"pipeline" yaml:"pipeline"`
	Validation validate.Config `toml:"validation" yaml:"validation"`
	Log        Log             `toml:"log" yaml:"log"`

	// Path is where the config came from; empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the stock configuration.
func Default() Config {
	oc := orchestrator.DefaultConfig()
	return Config{
		Format: format.DefaultOptions(),
		Pipeline: Pipeline{
			DefaultStrategy:             oc.DefaultStrategy,
			EnableCache:                 oc.EnableCache,
			CacheTTL:                    oc.CacheTTL,
			MaxCacheSize:                oc.MaxCacheSize,
			CleanupInterval:             oc.CleanupInterval,
			EnablePerformanceMonitoring: oc.EnablePerformanceMonitoring,
			MaxNodeCount:                oc.MaxNodeCount,
			Timeout:                     oc.Timeout,
			EnableValidation:            oc.EnableValidation,
			EnforceValidation:           oc.EnforceValidation,
		},
		Validation: validate.DefaultConfig(),
		Log:        Log{Level: "warn", Format: "console"},
	}
}

// Find walks up from startDir to the first directory holding one of Names.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		for _, name := range Names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("config: stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(raw, path)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes raw, choosing TOML or YAML by the extension of name.
func Parse(raw []byte, name string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", name, err)
		}
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported extension", name)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Resolve loads the config named by explicit, or the one Find locates from
// dir, or the defaults.
func Resolve(explicit, dir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(dir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of every section.
func (c Config) Validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s fails %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag())
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Orchestrator maps the file onto orchestrator.Config.
func (c Config) Orchestrator() orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	p := c.Pipeline
	oc.DefaultStrategy = p.DefaultStrategy
	oc.EnableCache = p.EnableCache
	oc.CacheTTL = p.CacheTTL
	oc.MaxCacheSize = p.MaxCacheSize
	oc.CleanupInterval = p.CleanupInterval
	oc.EnablePerformanceMonitoring = p.EnablePerformanceMonitoring
	oc.MaxNodeCount = p.MaxNodeCount
	oc.Timeout = p.Timeout
	oc.EnableValidation = p.EnableValidation
	oc.EnforceValidation = p.EnforceValidation
	oc.StrictValidation = c.Validation.StrictMode
	oc.MaxValidationErrors = c.Validation.MaxErrors
	oc.MinQualityScore = c.Validation.MinQualityScore
	return oc
}
