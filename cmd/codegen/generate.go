package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-theft-craft/protocol/cmd/codegen/internal/generator"
	"github.com/go-theft-craft/protocol/internal/config"
	"github.com/go-theft-craft/protocol/internal/schema"
)

func newGenerateCmd(fs afero.Fs, gf *globalFlags) *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "generate [PROTOCOL_DIR...]",
		Short: "Generate packet packages for one or more protocol versions",
		Long: `Generate packet packages for one or more protocol versions.

Each PROTOCOL_DIR is a minecraft-data version directory holding protocol.json
and version.json, e.g. ./scheme/pc-1.12.2. Directories may also be listed
under protocol_dirs in the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cfg.ProtocolDirs = args
			}
			if err := loadConfig(cmd, fs, gf, cfg); err != nil {
				return err
			}
			if len(cfg.ProtocolDirs) == 0 {
				return errors.New("no protocol dirs given")
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			return generate(cmd, fs, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output base directory")
	flags.StringVar(&cfg.Package, "pkg", cfg.Package, "package name override (default: derived from the protocol dir)")
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "protocol dirs generated in parallel")
	return cmd
}

func generate(cmd *cobra.Command, fs afero.Fs, cfg *config.Config, log *slog.Logger) error {
	packages := map[string]string{}
	for _, dir := range cfg.ProtocolDirs {
		pkg := cfg.PackageFor(dir)
		if prev, ok := packages[pkg]; ok {
			return fmt.Errorf("protocol dirs %s and %s both map to package %s", prev, dir, pkg)
		}
		packages[pkg] = dir
	}

	gen, err := generator.New(fs, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Concurrency)
	for _, dir := range cfg.ProtocolDirs {
		g.Go(func() error {
			sch, err := schema.LoadDir(fs, dir)
			if err != nil {
				return err
			}
			target := generator.Target{OutDir: cfg.OutDir, Package: cfg.PackageFor(dir)}
			stats, err := gen.Run(ctx, sch, target)
			if err != nil {
				return fmt.Errorf("generate %s: %w", dir, err)
			}
			log.Info("codegen done",
				slog.String("dir", dir),
				slog.String("package", target.Package),
				slog.Int("packets", stats.Packets),
				slog.Int("markers", stats.Markers))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("codegen failed", slog.Any("error", err))
		return err
	}
	return nil
}
