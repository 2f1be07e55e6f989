package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/internal/config"
	"github.com/gogpu/fx/quality"
)

var (
	version    = "0.1.0"
	configFile string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fxrender",
	Short: "Apply parametric image effects from the command line",
	Long: `fxrender renders a stack of effect layers over an image.

A stack is a JSON array of layer records, the same form an editing
session persists:

  [{"effectId": "pixelate", "params": {"cellSize": 12}, "opacity": 1,
    "visible": true, "blendMode": "normal"}]

Settings come from FX_* environment variables, an optional config file
and the flags below, in increasing order of precedence.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	pf.Int("workers", 0, "software device workers (0 = GOMAXPROCS)")
	pf.Int("max-size", config.DefaultMaxTargetSize, "largest render target side")
	pf.String("log-level", config.DefaultLogLevel, "debug, info, warn or error")

	bindFlags()

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fxrender %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// bindFlags lets the persistent flags override config values.
func bindFlags() {
	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("WORKERS", pf.Lookup("workers"))
	_ = viper.BindPFlag("MAX_TARGET_SIZE", pf.Lookup("max-size"))
	_ = viper.BindPFlag("LOG_LEVEL", pf.Lookup("log-level"))
}

// setup loads the configuration and installs the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = c

	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	fx.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

// newEngine builds an engine from the loaded configuration.
func newEngine(opts ...fx.Option) *fx.Engine {
	return fx.NewEngine(append(engineOptions(cfg), opts...)...)
}

// engineOptions maps a loaded configuration onto engine options.
func engineOptions(c *config.Config) []fx.Option {
	return []fx.Option{
		fx.WithQuality(quality.NewSelector(
			quality.WithScales(c.LowScale, c.MediumScale, c.HighScale),
			quality.WithThreshold(c.ComplexityThreshold),
		)),
		fx.WithMaxTargetSize(c.MaxTargetSize),
		fx.WithWorkers(c.Workers),
		fx.WithHistoryLimit(c.HistoryLimit),
		fx.WithPreload(c.PreloadShaders),
	}
}
