package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/halfspace/pkg/config"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"go.uber.org/zap"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='YAML configuration file'"`
	Color      string `cli:"name=color desc='color mode: auto, always, never'"`
	Dev        bool   `cli:"name=dev desc='development logging'"`

	Conf config.Config
	Log  *zap.Logger

	Main *cli.Command
}

// setup loads the configuration file, applies flag overrides and builds the
// logger. It runs once, before any subcommand.
func (cfg *MainConfig) setup() error {
	conf := config.Default()
	if cfg.ConfigFile != "" {
		var err error
		conf, err = config.Load(cfg.ConfigFile)
		if err != nil {
			return err
		}
	}
	if cfg.Color != "" {
		conf.Output.Color = cfg.Color
	}
	if cfg.Dev {
		conf.Log.Development = true
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	log, err := conf.Log.NewLogger()
	if err != nil {
		return err
	}
	cfg.Conf = conf
	cfg.Log = log
	return nil
}

func (cfg *MainConfig) palette(w io.Writer) *palette {
	return newPalette(useColor(cfg.Conf.Output.Color, w))
}

// useColor resolves a color mode against the destination writer. Auto
// enables color only for terminals.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type ShowConfig struct {
	*MainConfig

	Simplify bool `cli:"name=s aliases=simplify desc='simplify rules before printing'"`
	Show     *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Strict bool `cli:"name=strict desc='treat warnings as errors'"`
	Check  *cli.Command
}

type ClassifyConfig struct {
	*MainConfig

	Object   string `cli:"name=object aliases=o desc='classify a single object'"`
	Classify *cli.Command
}

type BBoxConfig struct {
	*MainConfig

	BBox *cli.Command
}
