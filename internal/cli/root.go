// Package cli provides the Cobra command structure for xrope.
package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/xrope/internal/config"
	"github.com/dshills/xrope/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootOptions carries global flags and the loaded configuration to the
// subcommands.
type rootOptions struct {
	debug      bool
	configPath string
	cfg        config.Config
}

// NewRootCommand creates the root xrope command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &rootOptions{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "xrope",
		Short: "Inspect and exercise reference-counted ropes",
		Long: `xrope builds ropes from files and strings and reports on them.

A rope is a tree of shared byte chunks with constant-time concatenation and
substring extraction that shares storage with its source. The commands here
load files into ropes, query them, render their structure, and run Lua
scripts against the rope API.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return errors.Wrap(err, "loading configuration")
			}
			opts.cfg = cfg
			logging.SetLevel(cfg.Log.Level)
			if opts.debug {
				logging.SetLevel("debug")
			}
			logging.FromContext(cmd.Context()).Debug("configuration loaded",
				logging.FieldConfig, opts.configPath,
				logging.FieldBlock, cfg.Load.BlockSize,
				logging.FieldTimeout, cfg.Script.Timeout,
			)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (.toml, .yaml)")

	rootCmd.AddCommand(newSelfTestCommand())
	rootCmd.AddCommand(newStatCommand(opts))
	rootCmd.AddCommand(newAtCommand(opts))
	rootCmd.AddCommand(newSliceCommand(opts))
	rootCmd.AddCommand(newTreeCommand(opts))
	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
