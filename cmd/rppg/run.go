package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-rppg/internal/samplecsv"
	"github.com/cwbudde/algo-rppg/measure/heartrate"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

func (a *app) newRunCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "run [samples.csv]",
		Short: "Estimate heart rate over a sample CSV file (stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.newMeter(cmd)
			if err != nil {
				return err
			}

			samples, err := readSamplesArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			return writeEstimates(cmd.OutOrStdout(), m, samples, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every frame, not only ready estimates")

	return cmd
}

func readSamplesArg(stdin io.Reader, args []string) ([]colour.Sample, error) {
	if len(args) == 0 || args[0] == "-" {
		return samplecsv.ReadSamples(stdin)
	}

	return readSamplesFile(args[0])
}

func readSamplesFile(path string) ([]colour.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := samplecsv.ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return samples, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeEstimates(w io.Writer, m *heartrate.Meter, samples []colour.Sample, all bool) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "FRAME\tSTATE\tBPM\tRAW\tDISPLAYED\tMOOD")

	for i, s := range samples {
		est := m.Process(s)
		if est.State != heartrate.StateReady {
			if all {
				fmt.Fprintf(tw, "%d\t%s\t%.0f\t-\t-\t-\n", i+1, est.State, est.Value())
			}
			continue
		}

		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%s\n",
			i+1, est.State, est.BPM, est.Raw, m.Displayed(), heartrate.Mood(est.BPM))
	}

	return tw.Flush()
}
