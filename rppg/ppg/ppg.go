// Package ppg turns a window of skin colour samples into a 1-D pulse
// (blood volume pulse) waveform.
package ppg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-rppg/rppg/colour"
)

var (
	// ErrEmptySignal reports an extraction request with no samples.
	ErrEmptySignal = errors.New("ppg: empty signal")
	// ErrUnknownAlgorithm reports an unsupported Algorithm value.
	ErrUnknownAlgorithm = errors.New("ppg: unknown algorithm")
	// ErrNonFinite reports NaN or Inf samples, which PCA cannot decompose.
	ErrNonFinite = errors.New("ppg: non-finite sample")
)

// Algorithm selects an extraction method.
type Algorithm int

const (
	// Green uses the green channel as the pulse waveform.
	Green Algorithm = iota
	// PCA projects the centred samples on their principal axis.
	PCA
	// CHROM combines two chrominance signals to cancel specular and
	// motion components.
	CHROM
)

var algorithmNames = [...]string{"green", "pca", "chrom"}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm parses a case-insensitive algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range algorithmNames {
		if name == key {
			return Algorithm(i), nil
		}
	}
	return Green, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Extract returns one pulse value per row of sig.
func Extract(sig colour.Signal, alg Algorithm) ([]float64, error) {
	if len(sig) == 0 {
		return nil, ErrEmptySignal
	}

	switch alg {
	case Green:
		return ExtractGreen(sig), nil
	case PCA:
		return ExtractPCA(sig)
	case CHROM:
		return ExtractCHROM(sig), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
	}
}

// ExtractGreen returns the green channel.
func ExtractGreen(sig colour.Signal) []float64 {
	return sig.Column(colour.Green)
}
