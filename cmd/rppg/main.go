// Command rppg estimates heart rate from RGB skin-colour streams.
//
// Usage:
//
//	rppg run samples.csv
//	rppg synth --bpm 72 --seconds 60 > samples.csv
//	rppg eval --truth-suffix _gt.csv subject1.csv subject2.csv
//	rppg serve --nats nats://localhost:4222
//	rppg filter --fps 25
//
// Pipeline flags override values from --config.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-rppg/internal/config"
	"github.com/cwbudde/algo-rppg/measure/heartrate"
	"github.com/cwbudde/algo-rppg/rppg/filterbank"
	"github.com/cwbudde/algo-rppg/rppg/ppg"
)

type app struct {
	configPath string
	logLevel   string
	fps        int
	preFilter  string
	algorithm  string
	postFilter string
	smoothing  bool

	cfg    config.File
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rppg",
		Short: "Remote photoplethysmography heart-rate estimation",
		Long: `rppg turns a stream of mean skin RGB values into a heart rate.

Each sample passes through an optional pre-filter, a pulse extractor
(green, pca or chrom), an optional post-filter and a Welch spectral
peak search, followed by smoothing.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.IntVar(&a.fps, "fps", 30, "sample rate in frames per second")
	pf.StringVar(&a.preFilter, "prefilter", "none", "pre-filter (none, bandpass, detrend, zero-mean)")
	pf.StringVar(&a.algorithm, "ppg", "pca", "pulse extractor (green, pca, chrom)")
	pf.StringVar(&a.postFilter, "postfilter", "none", "post-filter (none, bandpass)")
	pf.BoolVar(&a.smoothing, "smoothing", true, "clamp estimates around the recent mean")

	rootCmd.AddCommand(
		a.newRunCmd(),
		a.newSynthCmd(),
		a.newEvalCmd(),
		a.newServeCmd(),
		a.newFilterCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := slog.LevelInfo
	name := a.logLevel
	if name == "" {
		name = a.cfg.Log.Level
	}
	if name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("log level %q: %w", name, err)
		}
	}

	a.logger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{Level: level}))

	return nil
}

// meterOptions merges the configuration file with explicitly set flags.
func (a *app) meterOptions(cmd *cobra.Command) ([]heartrate.MeterOption, error) {
	opts, err := a.cfg.Options()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("fps") {
		opts = append(opts, heartrate.WithFrameRate(a.fps))
	}
	if flags.Changed("prefilter") {
		mode, err := filterbank.ParseMode(a.preFilter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, heartrate.WithPreFilter(mode))
	}
	if flags.Changed("ppg") {
		alg, err := ppg.ParseAlgorithm(a.algorithm)
		if err != nil {
			return nil, err
		}
		opts = append(opts, heartrate.WithAlgorithm(alg))
	}
	if flags.Changed("postfilter") {
		mode, err := filterbank.ParseMode(a.postFilter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, heartrate.WithPostFilter(mode))
	}
	if flags.Changed("smoothing") {
		opts = append(opts, heartrate.WithSmoothing(a.smoothing))
	}

	return opts, nil
}

func (a *app) newMeter(cmd *cobra.Command) (*heartrate.Meter, error) {
	opts, err := a.meterOptions(cmd)
	if err != nil {
		return nil, err
	}

	return heartrate.NewMeter(append(opts, heartrate.WithLogger(a.logger))...)
}
