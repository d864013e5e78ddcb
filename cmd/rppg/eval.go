package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-rppg/internal/samplecsv"
	"github.com/cwbudde/algo-rppg/measure/heartrate"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

var errNoOverlap = errors.New("no estimates to compare with ground truth")

func (a *app) newEvalCmd() *cobra.Command {
	var (
		truthSuffix string
		jobs        int
	)

	cmd := &cobra.Command{
		Use:   "eval samples.csv...",
		Short: "Compare estimates with ground truth and report MAE and RMSE",
		Long: `eval runs one meter per sample file, concurrently, and compares the
ready estimates with the ground-truth series stored next to each file
(subject.csv pairs with subject_gt.csv by default). Series are aligned
by estimate index and truncated to the shorter one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.meterOptions(cmd)
			if err != nil {
				return err
			}
			opts = append(opts, heartrate.WithLogger(a.logger))

			rows := make([]samplecsv.Summary, len(args))

			var g errgroup.Group
			if jobs > 0 {
				g.SetLimit(jobs)
			}

			for i, path := range args {
				g.Go(func() error {
					row, err := evaluateFile(path, truthPath(path, truthSuffix), opts)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					rows[i] = row
					a.logger.Info("evaluated", "subject", row.Subject, "mae", row.MAE, "rmse", row.RMSE)
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			return writeReport(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&truthSuffix, "truth-suffix", "_gt.csv", "suffix replacing .csv to name the ground-truth file")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "maximum files processed at once (0 means unlimited)")

	return cmd
}

func truthPath(samplesPath, suffix string) string {
	return strings.TrimSuffix(samplesPath, filepath.Ext(samplesPath)) + suffix
}

func subjectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func evaluateFile(samplesPath, truthPath string, opts []heartrate.MeterOption) (samplecsv.Summary, error) {
	samples, err := readSamplesFile(samplesPath)
	if err != nil {
		return samplecsv.Summary{}, err
	}

	f, err := os.Open(truthPath)
	if err != nil {
		return samplecsv.Summary{}, err
	}
	defer f.Close()

	truth, err := samplecsv.ReadSeries(f)
	if err != nil {
		return samplecsv.Summary{}, fmt.Errorf("%s: %w", truthPath, err)
	}

	m, err := heartrate.NewMeter(opts...)
	if err != nil {
		return samplecsv.Summary{}, err
	}

	predicted := predict(m, samples)

	mae, rmse, n, err := errorMetrics(truth, predicted)
	if err != nil {
		return samplecsv.Summary{}, err
	}

	return samplecsv.Summary{
		Subject:   subjectName(samplesPath),
		Estimates: n,
		MAE:       mae,
		RMSE:      rmse,
	}, nil
}

// predict returns every ready estimate in stream order.
func predict(m *heartrate.Meter, samples []colour.Sample) []float64 {
	var out []float64

	for _, s := range samples {
		if est := m.Process(s); est.State == heartrate.StateReady {
			out = append(out, est.BPM)
		}
	}

	return out
}

// errorMetrics compares the common prefix of truth and predicted.
func errorMetrics(truth, predicted []float64) (mae, rmse float64, n int, err error) {
	n = min(len(truth), len(predicted))
	if n == 0 {
		return 0, 0, 0, errNoOverlap
	}

	t, p := truth[:n], predicted[:n]

	mae = floats.Distance(t, p, 1) / float64(n)
	rmse = floats.Distance(t, p, 2) / math.Sqrt(float64(n))

	return mae, rmse, n, nil
}

// writeReport writes the per-subject rows followed by their mean.
func writeReport(w io.Writer, rows []samplecsv.Summary) error {
	maes := make([]float64, len(rows))
	rmses := make([]float64, len(rows))
	total := 0

	for i, r := range rows {
		maes[i] = r.MAE
		rmses[i] = r.RMSE
		total += r.Estimates
	}

	mean := samplecsv.Summary{
		Subject:   "mean",
		Estimates: total,
		MAE:       stat.Mean(maes, nil),
		RMSE:      stat.Mean(rmses, nil),
	}

	return samplecsv.WriteSummaries(w, append(rows, mean))
}
