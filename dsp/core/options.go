package core

// StreamConfig defines the frame-stream settings shared by the
// per-frame estimators.
type StreamConfig struct {
	// FrameRate is the number of processed video frames per second.
	FrameRate int
	// WindowSeconds is the duration of one analysis window.
	WindowSeconds int
}

// StreamOption mutates a StreamConfig.
type StreamOption func(*StreamConfig)

// DefaultStreamConfig returns defaults for webcam-rate video.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		FrameRate:     30,
		WindowSeconds: 1,
	}
}

// WithFrameRate sets the frame rate in frames per second.
func WithFrameRate(fps int) StreamOption {
	return func(cfg *StreamConfig) {
		if fps > 0 {
			cfg.FrameRate = fps
		}
	}
}

// WithWindowSeconds sets the analysis window duration.
func WithWindowSeconds(seconds int) StreamOption {
	return func(cfg *StreamConfig) {
		if seconds > 0 {
			cfg.WindowSeconds = seconds
		}
	}
}

// WindowSize returns the number of samples in one analysis window.
func (c StreamConfig) WindowSize() int {
	return c.FrameRate * c.WindowSeconds
}

// ApplyStreamOptions applies zero or more options to the default config.
func ApplyStreamOptions(opts ...StreamOption) StreamConfig {
	cfg := DefaultStreamConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
