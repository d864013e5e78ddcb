package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-rppg/internal/samplecsv"
	"github.com/cwbudde/algo-rppg/internal/synth"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

type synthParams struct {
	bpm       float64
	seconds   int
	amplitude float64
	noise     float64
	seed      int64
	truthPath string
}

func (a *app) newSynthCmd() *cobra.Command {
	p := synthParams{}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic pulse stream as sample CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fps := a.fps
			if !cmd.Flags().Changed("fps") && a.cfg.FrameRate > 0 {
				fps = a.cfg.FrameRate
			}

			if err := samplecsv.WriteSamples(cmd.OutOrStdout(), synthesize(p, fps)); err != nil {
				return err
			}

			if p.truthPath == "" {
				return nil
			}

			return writeTruth(p.truthPath, p.bpm, p.seconds)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&p.bpm, "bpm", 72, "pulse rate in beats per minute")
	f.IntVar(&p.seconds, "seconds", 60, "stream duration")
	f.Float64Var(&p.amplitude, "amplitude", 1, "scale applied to the pulsatile amplitudes")
	f.Float64Var(&p.noise, "noise", 0, "peak amplitude of uniform noise per channel")
	f.Int64Var(&p.seed, "seed", 1, "noise seed")
	f.StringVar(&p.truthPath, "truth", "", "also write a constant ground-truth series to this file")

	return cmd
}

func synthesize(p synthParams, fps int) []colour.Sample {
	channels := synth.DefaultChannels
	for i := range channels {
		channels[i].Amplitude *= p.amplitude
	}

	return synth.Samples(p.bpm, float64(fps), p.seconds*fps, channels, p.noise, p.seed)
}

// writeTruth writes one ground-truth value per second, which is at
// least as many as a one-second window meter will emit.
func writeTruth(path string, bpm float64, seconds int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	series := make([]float64, seconds)
	for i := range series {
		series[i] = bpm
	}

	if err := samplecsv.WriteSeries(f, series); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
