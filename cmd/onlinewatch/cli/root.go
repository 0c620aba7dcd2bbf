// Package cli implements the onlinewatch command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"onlinewatch/internal/config"
	"onlinewatch/internal/log"
)

type rootOptions struct {
	configPath string
	log        *log.Options
}

// NewRootCommand builds the onlinewatch command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &rootOptions{log: log.NewOptions()}

	cmd := &cobra.Command{
		Use:          "onlinewatch",
		Short:        "Watch internet connectivity of this host",
		Long:         "onlinewatch polls a connectivity endpoint every few seconds, persists whether the host is online and broadcasts every change.",
		SilenceUsage: true,
	}
	cmd.SetContext(ctx)

	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.configPath, "config", "c", "config.yaml", "Path to configuration file (YAML).")
	opts.log.AddFlags(fs)

	cmd.AddCommand(
		newServeCommand(opts),
		newCheckCommand(opts),
		newStateCommand(opts),
	)
	return cmd
}

// load reads the configuration and builds the logger. Log flags given on
// the command line win over the log section of the file.
func (o *rootOptions) load(fs *pflag.FlagSet) (config.Config, log.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	overrideLogOptions(fs, &cfg.Log, o.log)
	if errs := cfg.Log.Validate(); len(errs) > 0 {
		return config.Config{}, nil, fmt.Errorf("log options: %v", errs)
	}

	logger, err := log.NewLogger(&cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	log.SetDefault(logger)
	return cfg, logger, nil
}

func overrideLogOptions(fs *pflag.FlagSet, dst, flags *log.Options) {
	if fs.Changed("log.name") {
		dst.Name = flags.Name
	}
	if fs.Changed("log.level") {
		dst.Level = flags.Level
	}
	if fs.Changed("log.format") {
		dst.Format = flags.Format
	}
	if fs.Changed("log.enable-color") {
		dst.EnableColor = flags.EnableColor
	}
	if fs.Changed("log.disable-caller") {
		dst.DisableCaller = flags.DisableCaller
	}
	if fs.Changed("log.output-paths") {
		dst.OutputPaths = flags.OutputPaths
	}
}
