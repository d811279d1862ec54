package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/go-theft-craft/protocol/internal/config"
)

type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	gf := &globalFlags{}
	root := &cobra.Command{
		Use:          "codegen",
		Short:        "Generate Go packet packages from minecraft-data protocol schemas",
		SilenceUsage: true,
	}

	defaults := config.DefaultConfig()
	root.PersistentFlags().StringVar(&gf.configFile, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&gf.logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&gf.logFormat, "log-format", defaults.LogFormat, "log format: text or json")

	root.AddCommand(newGenerateCmd(fs, gf), newInspectCmd(fs, gf))
	return root
}

// loadConfig applies the config file, if any, under the flags the user set.
func loadConfig(cmd *cobra.Command, fs afero.Fs, gf *globalFlags, cfg *config.Config) error {
	cfg.LogLevel = gf.logLevel
	cfg.LogFormat = gf.logFormat

	if gf.configFile != "" {
		fromFile, err := config.LoadFile(fs, gf.configFile)
		if err != nil {
			return err
		}
		config.Merge(cfg, fromFile, changedFlags(cmd.Flags()))
	}
	return cfg.Validate()
}

func changedFlags(flags *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	log, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
