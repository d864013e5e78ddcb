package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-rppg/dsp/window"
	"github.com/cwbudde/algo-rppg/measure/heartrate"
	"github.com/cwbudde/algo-rppg/rppg/filterbank"
	"github.com/cwbudde/algo-rppg/rppg/welch"
)

func (a *app) newFilterCmd() *cobra.Command {
	var step float64

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the band-pass design, the spectral window and the magnitude response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.meterOptions(cmd)
			if err != nil {
				return err
			}

			cfg := heartrate.ApplyMeterOptions(opts...)
			bank := filterbank.New(float64(cfg.FrameRate), cfg.Bandpass...)

			taper := welch.ApplyOptions(cfg.Welch...).Window

			return printFilter(cmd.OutOrStdout(), bank, taper, float64(cfg.FrameRate), step)
		},
	}

	cmd.Flags().Float64Var(&step, "step", 0.25, "frequency step of the response table in Hz")

	return cmd
}

func printFilter(w io.Writer, bank *filterbank.Bank, taper window.Type, fps, step float64) error {
	c, err := bank.Coefficients()
	if err != nil {
		return err
	}
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %v", step)
	}

	bc := bank.Config()
	fmt.Fprintf(w, "Butterworth band-pass, order %d, %.2f-%.2f Hz at %.0f fps\n", bc.Order, bc.LowHz, bc.HighHz, fps)
	fmt.Fprintf(w, "b = %.9f\n", c.B)
	fmt.Fprintf(w, "a = %.9f\n", c.A)

	win := window.Info(taper)
	fmt.Fprintf(w, "spectral window %s, ENBW %.2f bins, sidelobe %.1f dB\n\n", win.Name, win.ENBW, win.HighestSidelobe)

	tw := newTable(w)
	fmt.Fprintln(tw, "Hz\tBPM\t|H|\tdB (zero-phase)")
	fmt.Fprintln(tw, "--\t---\t---\t---------------")

	for f := step; f < fps/2; f += step {
		// Forward-backward filtering squares the magnitude.
		fmt.Fprintf(tw, "%.2f\t%.0f\t%.4f\t%.2f\n", f, f*60, c.Magnitude(f, fps), 2*c.MagnitudeDB(f, fps))
	}

	return tw.Flush()
}
