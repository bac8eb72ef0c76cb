package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/cache"
	"github.com/matzehuels/b4wexport/pkg/errors"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the optional TOML configuration file. Unset keys keep the
// pipeline defaults.
//
//	format_version = "6.02"
//	strict = false
//	pretty = true
//	write_packed = true
//
//	[cache]
//	backend = "file"
//	dir = ""
//	redis_url = ""
//	ttl = "168h"
type Config struct {
	FormatVersion string      `toml:"format_version"`
	Strict        *bool       `toml:"strict"`
	Pretty        *bool       `toml:"pretty"`
	WritePacked   *bool       `toml:"write_packed"`
	Cache         CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the geometry cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// LoadConfig decodes the TOML file at path. Unknown keys are an
// INVALID_INPUT error so typos do not pass silently.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that LoadConfig cannot check by type.
func (c *Config) Validate() error {
	if c.FormatVersion != "" {
		if err := errors.ValidateFormatVersion(c.FormatVersion); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	return nil
}

// Apply copies every configured value into opts. Callers apply command-line
// flags afterwards so that flags win.
func (c *Config) Apply(opts *Options) {
	if c == nil {
		return
	}
	if c.FormatVersion != "" {
		opts.FormatVersion = c.FormatVersion
	}
	if c.Strict != nil {
		opts.Strict = *c.Strict
	}
	if c.Pretty != nil {
		opts.Pretty = *c.Pretty
	}
	if c.WritePacked != nil {
		opts.NoPacked = !*c.WritePacked
	}
}

// ttl returns the configured cache ttl or [cache.DefaultTTL].
func (c CacheConfig) ttl() time.Duration {
	if c.TTL == 0 {
		return cache.DefaultTTL
	}
	return c.TTL
}

// OpenCache opens the configured backend. The file backend defaults to
// [cache.DefaultDir]. Backend failures are CACHE errors.
func OpenCache(ctx context.Context, c CacheConfig) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			URL:    c.RedisURL,
			Prefix: "b4wexport:",
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open redis cache")
		}
		return rc, nil
	case "", BackendFile:
		dir := c.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeCache, err, "locate cache directory")
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open file cache %s", dir)
		}
		return fc, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid cache backend: %q", c.Backend)
}

// NewRunnerFromConfig opens the configured cache and builds a runner on it.
// Geometry keys are scoped by the default format version.
func NewRunnerFromConfig(ctx context.Context, c CacheConfig, logger *log.Logger) (*Runner, error) {
	store, err := OpenCache(ctx, c)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, fmt.Sprintf("b4w:%s:", DefaultFormatVersion))
	return NewRunner(store, keyer, c.ttl(), logger), nil
}
