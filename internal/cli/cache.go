package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/b4wexport/pkg/cache"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cooked geometry cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached geometry",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return errors.Wrap(errors.ErrCodeCache, err, "open cache")
			}
			n, err := fc.Clear()
			if err != nil {
				return errors.Wrap(errors.ErrCodeCache, err, "clear %s", dir)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// fileCacheDir returns the directory of the file backend. Other backends
// are managed outside the CLI.
func (c *CLI) fileCacheDir() (string, error) {
	cc := c.cacheConfig(false)
	switch cc.Backend {
	case "", pipeline.BackendFile:
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "cache backend %q is not managed by %s", cc.Backend, appName)
	}
	if cc.Dir != "" {
		return cc.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCache, err, "get cache dir")
	}
	return dir, nil
}
