package config

import (
	"os"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "XROPE_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // env var suffix -> config path
}

// NewEnvLoader creates an environment loader. The prefix includes the
// trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		mapping: map[string]string{
			"LOG_LEVEL":      "log.level",
			"BLOCK_SIZE":     "load.blockSize",
			"SCRIPT_TIMEOUT": "script.timeout",
		},
	}
}

// Load returns the mapped variables that are set. Values stay strings;
// decoding converts them. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for suffix, path := range l.mapping {
		if val, ok := os.LookupEnv(l.prefix + suffix); ok {
			setByPath(config, path, val)
		}
	}
	return config, nil
}
