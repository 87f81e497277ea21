// Package config loads xrope settings.
//
// Settings are layered: built-in defaults, then a TOML or YAML file, then
// XROPE_* environment variables. Each layer is read into a generic map,
// the maps are merged, and the result is decoded into a Config.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Config holds all settings.
type Config struct {
	Log    LogConfig
	Load   LoadConfig
	Script ScriptConfig
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string
}

// LoadConfig configures how files are read into ropes.
type LoadConfig struct {
	// BlockSize is the size in bytes of the owned leaves built when a file
	// is loaded.
	BlockSize int
}

// ScriptConfig configures the Lua script host.
type ScriptConfig struct {
	// Timeout bounds the run time of a single script.
	Timeout time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Load:   LoadConfig{BlockSize: 64 << 10},
		Script: ScriptConfig{Timeout: 5 * time.Second},
	}
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid setting")

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Wrapf(ErrInvalid, "log.level %q", c.Log.Level)
	}
	if c.Load.BlockSize <= 0 {
		return errors.Wrapf(ErrInvalid, "load.blockSize %d must be positive", c.Load.BlockSize)
	}
	if c.Script.Timeout <= 0 {
		return errors.Wrapf(ErrInvalid, "script.timeout %s must be positive", c.Script.Timeout)
	}
	return nil
}

// Load builds a Config from the defaults, the file at path and the
// environment. An empty path or a missing file contributes nothing.
func Load(path string) (Config, error) {
	return NewManager(DefaultFS()).Load(path)
}

// Manager layers configuration sources over the defaults.
type Manager struct {
	fs  FileSystem
	env *EnvLoader
}

// NewManager creates a manager reading files from fs and environment
// variables with the XROPE_ prefix.
func NewManager(fs FileSystem) *Manager {
	return &Manager{
		fs:  fs,
		env: NewEnvLoader(EnvPrefix),
	}
}

// Load reads and merges every layer and validates the result.
func (m *Manager) Load(path string) (Config, error) {
	merged := toMap(Default())

	if path != "" {
		loader, err := m.fileLoader(path)
		if err != nil {
			return Config{}, err
		}
		file, err := loader.LoadFrom(path)
		if err != nil {
			return Config{}, err
		}
		merged = DeepMerge(merged, file)
	}

	env, err := m.env.Load()
	if err != nil {
		return Config{}, err
	}
	merged = DeepMerge(merged, env)

	cfg, err := decode(merged)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: decoding %s", sourceName(path))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fileLoader picks a loader by file extension.
func (m *Manager) fileLoader(path string) (FileLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(m.fs, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(m.fs, path), nil
	default:
		return nil, errors.Newf("config: unsupported file type %q", filepath.Ext(path))
	}
}

func sourceName(path string) string {
	if path == "" {
		return "defaults and environment"
	}
	return path
}
