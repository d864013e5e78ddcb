// Package samplecsv reads and writes colour-sample streams, rate series
// and evaluation summaries as CSV.
package samplecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-rppg/rppg/colour"
)

// ErrMissingColumn reports a header without a required column.
var ErrMissingColumn = errors.New("samplecsv: missing column")

// SampleHeader is the header written by WriteSamples.
var SampleHeader = []string{"r", "g", "b"}

// ReadSamples reads a header row naming r, g and b columns (in any order,
// other columns ignored) followed by one sample per row.
func ReadSamples(r io.Reader) ([]colour.Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("samplecsv: header: %w", err)
	}

	var idx [colour.NumChannels]int
	for c := range colour.NumChannels {
		idx[c] = column(header, SampleHeader[c])
		if idx[c] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, SampleHeader[c])
		}
	}

	var out []colour.Sample

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("samplecsv: %w", err)
		}

		var s colour.Sample
		for c := range colour.NumChannels {
			if s[c], err = parseField(rec, idx[c]); err != nil {
				return nil, fmt.Errorf("samplecsv: line %d: %w", line, err)
			}
		}

		out = append(out, s)
	}
}

// WriteSamples writes samples with SampleHeader.
func WriteSamples(w io.Writer, samples []colour.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(SampleHeader); err != nil {
		return err
	}

	rec := make([]string, colour.NumChannels)
	for _, s := range samples {
		for c := range colour.NumChannels {
			rec[c] = formatFloat(s[c])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSeries reads a single-column rate series with a "bpm" header.
func ReadSeries(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("samplecsv: header: %w", err)
	}

	idx := column(header, "bpm")
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, "bpm")
	}

	var out []float64

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("samplecsv: %w", err)
		}

		v, err := parseField(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("samplecsv: line %d: %w", line, err)
		}

		out = append(out, v)
	}
}

// WriteSeries writes a "bpm" series.
func WriteSeries(w io.Writer, series []float64) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"bpm"}); err != nil {
		return err
	}

	for _, v := range series {
		if err := cw.Write([]string{formatFloat(v)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Summary is one evaluation row.
type Summary struct {
	Subject   string
	Estimates int
	MAE       float64
	RMSE      float64
}

// WriteSummaries writes evaluation rows with a header.
func WriteSummaries(w io.Writer, rows []Summary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"subject", "estimates", "mae", "rmse"}); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{r.Subject, strconv.Itoa(r.Estimates), formatFloat(r.MAE), formatFloat(r.RMSE)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func column(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func parseField(rec []string, i int) (float64, error) {
	if i >= len(rec) {
		return 0, fmt.Errorf("missing field %d", i+1)
	}
	return strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
