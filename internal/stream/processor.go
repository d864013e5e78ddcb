package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-rppg/measure/heartrate"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

// SampleMsg is one colour sample on the wire.
type SampleMsg struct {
	R   float64 `json:"r"`
	G   float64 `json:"g"`
	B   float64 `json:"b"`
	FPS int     `json:"fps,omitempty"`
}

// EstimateMsg is one published estimate.
type EstimateMsg struct {
	Ts        int64   `json:"ts"`
	State     string  `json:"state"`
	BPM       float64 `json:"bpm"`
	Raw       float64 `json:"raw,omitempty"`
	Displayed float64 `json:"displayed,omitempty"`
	Mood      string  `json:"mood,omitempty"`
}

// Processor runs one Meter over a message stream. It publishes every
// ready estimate and every change of state. A Processor is not safe for
// concurrent use.
type Processor struct {
	opts   []heartrate.MeterOption
	meter  *heartrate.Meter
	fps    int
	last   heartrate.State
	logger *slog.Logger
	now    func() time.Time
}

// NewProcessor builds a processor whose meter uses opts.
func NewProcessor(logger *slog.Logger, opts ...heartrate.MeterOption) (*Processor, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m, err := heartrate.NewMeter(append(append([]heartrate.MeterOption(nil), opts...), heartrate.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}

	return &Processor{
		opts:   opts,
		meter:  m,
		fps:    m.Config().FrameRate,
		last:   -1,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Handle decodes one sample message and returns the message to publish,
// if any.
//
// A sample announcing a different frame rate restarts the meter at that
// rate, since window geometry and the band-pass depend on it.
func (p *Processor) Handle(data []byte) (EstimateMsg, bool, error) {
	var in SampleMsg
	if err := json.Unmarshal(data, &in); err != nil {
		return EstimateMsg{}, false, fmt.Errorf("stream: decode sample: %w", err)
	}

	if in.FPS > 0 && in.FPS != p.fps {
		if err := p.restart(in.FPS); err != nil {
			return EstimateMsg{}, false, err
		}
	}

	est := p.meter.Process(colour.Sample{in.R, in.G, in.B})

	changed := est.State != p.last
	p.last = est.State

	if est.State != heartrate.StateReady && !changed {
		return EstimateMsg{}, false, nil
	}

	out := EstimateMsg{
		Ts:    p.now().UnixMilli(),
		State: est.State.String(),
		BPM:   est.Value(),
	}

	if est.State == heartrate.StateReady {
		out.Raw = est.Raw
		out.Displayed = p.meter.Displayed()
		out.Mood = heartrate.Mood(est.BPM)
	}

	return out, true, nil
}

// Forward handles data and publishes the result to subject.
func (p *Processor) Forward(pub Publisher, subject string, data []byte) error {
	msg, ok, err := p.Handle(data)
	if err != nil || !ok {
		return err
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("stream: encode estimate: %w", err)
	}

	return pub.Publish(subject, b)
}

func (p *Processor) restart(fps int) error {
	opts := append(append([]heartrate.MeterOption(nil), p.opts...),
		heartrate.WithFrameRate(fps),
		heartrate.WithLogger(p.logger),
	)

	m, err := heartrate.NewMeter(opts...)
	if err != nil {
		return fmt.Errorf("stream: frame rate %d: %w", fps, err)
	}

	p.logger.Info("frame rate changed, restarting meter", "from", p.fps, "to", fps)

	p.meter = m
	p.fps = fps
	p.last = -1

	return nil
}
