package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// toMap renders c in the same shape the file loaders produce.
func toMap(c Config) map[string]any {
	return map[string]any{
		"log":    map[string]any{"level": c.Log.Level},
		"load":   map[string]any{"blockSize": int64(c.Load.BlockSize)},
		"script": map[string]any{"timeout": c.Script.Timeout},
	}
}

// decode converts a merged configuration map into a Config. Unknown keys
// are ignored.
func decode(m map[string]any) (Config, error) {
	var cfg Config
	var err error

	if v, ok := getByPath(m, "log.level"); ok {
		s, ok := v.(string)
		if !ok {
			return cfg, errors.Newf("log.level: expected string, got %T", v)
		}
		cfg.Log.Level = s
	}
	if v, ok := getByPath(m, "load.blockSize"); ok {
		if cfg.Load.BlockSize, err = decodeSize(v); err != nil {
			return cfg, errors.Wrap(err, "load.blockSize")
		}
	}
	if v, ok := getByPath(m, "script.timeout"); ok {
		if cfg.Script.Timeout, err = decodeDuration(v); err != nil {
			return cfg, errors.Wrap(err, "script.timeout")
		}
	}
	return cfg, nil
}

// decodeSize accepts an integer byte count or a size string such as
// "64KiB" or "1 MB".
func decodeSize(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, errors.Newf("%d overflows int", n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, errors.Newf("%v is not a whole number of bytes", n)
		}
		if n >= math.MaxInt || n < math.MinInt {
			return 0, errors.Newf("%v overflows int", n)
		}
		return int(n), nil
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, nil
		}
		b, err := humanize.ParseBytes(n)
		if err != nil {
			return 0, errors.Wrapf(err, "parsing size %q", n)
		}
		if b > math.MaxInt {
			return 0, errors.Newf("%q overflows int", n)
		}
		return int(b), nil
	default:
		return 0, errors.Newf("expected size, got %T", v)
	}
}

// decodeDuration accepts a time.Duration, a duration string such as "2s",
// or a whole number of seconds.
func decodeDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
			return time.Duration(i) * time.Second, nil
		}
		dur, err := time.ParseDuration(strings.TrimSpace(d))
		if err != nil {
			return 0, errors.Wrapf(err, "parsing duration %q", d)
		}
		return dur, nil
	default:
		return 0, errors.Newf("expected duration, got %T", v)
	}
}
