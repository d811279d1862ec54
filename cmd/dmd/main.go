// Command dmd downloads minecraft-data protocol schemas for codegen.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	get "github.com/hashicorp/go-getter"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"
)

type options struct {
	base     string
	platform string
	version  string
	out      string
}

func main() {
	var opts options
	pflag.StringVar(&opts.base, "base", "https://github.com/PrismarineJS/minecraft-data.git", "base url")
	pflag.StringVar(&opts.platform, "platform", "pc", "platform of schemas")
	pflag.StringVar(&opts.version, "version", "1.12.2", "version of schemas")
	pflag.StringVarP(&opts.out, "out", "o", "./scheme", "output dir path")
	pflag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, afero.NewOsFs(), log, opts); err != nil {
		log.Error("download schemes", "error", err)
		os.Exit(1)
	}
}

func (o options) validate() error {
	switch {
	case o.out == "":
		return errors.New("output dir path required")
	case o.platform == "":
		return errors.New("platform required")
	case o.version == "":
		return errors.New("version required")
	}
	return nil
}

// prepare returns the directory a download goes to, removing what an
// earlier run left there.
func prepare(fsys afero.Fs, opts options) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	path := filepath.Join(opts.out, fmt.Sprintf("%s-%s", opts.platform, opts.version))
	if err := fsys.RemoveAll(path); err != nil {
		return "", fmt.Errorf("remove %s: %w", path, err)
	}
	return path, nil
}

func run(ctx context.Context, fsys afero.Fs, log *slog.Logger, opts options) error {
	path, err := prepare(fsys, opts)
	if err != nil {
		return err
	}

	log.Info("start downloading schemes", "path", path)

	// https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/1.12.2
	url := fmt.Sprintf("git::%s//data/%s/%s", opts.base, opts.platform, opts.version)
	if err := get.Get(path, url, get.WithContext(ctx)); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}

	info, err := checkSchemes(fsys, path)
	if err != nil {
		return err
	}
	log.Info("done downloading schemes",
		"path", path,
		"minecraft_version", info.minecraftVersion,
		"protocol", info.protocol)
	return nil
}

type schemeInfo struct {
	minecraftVersion string
	protocol         int64
}

// checkSchemes makes sure a downloaded directory can be fed to codegen.
func checkSchemes(fsys afero.Fs, dir string) (schemeInfo, error) {
	if ok, err := afero.Exists(fsys, filepath.Join(dir, "protocol.json")); err != nil {
		return schemeInfo{}, err
	} else if !ok {
		return schemeInfo{}, fmt.Errorf("protocol.json not found within protocol dir '%s'", dir)
	}

	raw, err := afero.ReadFile(fsys, filepath.Join(dir, "version.json"))
	if err != nil {
		return schemeInfo{}, fmt.Errorf("read version: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return schemeInfo{}, fmt.Errorf("version.json in '%s' is not valid JSON", dir)
	}

	protocol := gjson.GetBytes(raw, "version")
	if protocol.Type != gjson.Number {
		return schemeInfo{}, fmt.Errorf("version.json in '%s' has no protocol version", dir)
	}
	return schemeInfo{
		minecraftVersion: gjson.GetBytes(raw, "minecraftVersion").String(),
		protocol:         protocol.Int(),
	}, nil
}
