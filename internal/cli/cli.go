package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "b4wexport"

	// configName is the config file looked up in the working directory when
	// --config is not given.
	configName = "b4wexport.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag value.
	ConfigPath string
	config     *pipeline.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file named by --config, or b4wexport.toml in
// the working directory when it exists. Without either the config is empty.
func (c *CLI) loadConfig() error {
	path := c.ConfigPath
	if path == "" {
		if _, err := os.Stat(configName); err != nil {
			c.config = &pipeline.Config{}
			return nil
		}
		path = configName
	}
	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.config = cfg
	return nil
}

// Config returns the loaded config, never nil.
func (c *CLI) Config() *pipeline.Config {
	if c.config == nil {
		return &pipeline.Config{}
	}
	return c.config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	return pipeline.NewRunnerFromConfig(ctx, c.cacheConfig(noCache), c.Logger)
}

// cacheConfig resolves the cache section of the config for this process.
// The file backend defaults to the XDG cache directory.
func (c *CLI) cacheConfig(noCache bool) pipeline.CacheConfig {
	cc := c.Config().Cache
	if noCache {
		cc.Backend = pipeline.BackendNone
		return cc
	}
	if (cc.Backend == "" || cc.Backend == pipeline.BackendFile) && cc.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			cc.Dir = dir
		}
	}
	return cc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/b4wexport/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Exit Codes
// =============================================================================

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2   // bad arguments, options or config
	ExitStrict      = 3   // strict mode withheld the output
	ExitInterrupted = 130 // shell convention for SIGINT
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidVersion, errors.ErrCodeInvalidFormat:
		return ExitUsage
	case errors.ErrCodeStrict:
		return ExitStrict
	}
	return ExitFailure
}
