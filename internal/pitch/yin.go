package pitch

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Tunables
const (
	FrameSize = 2048
	HopSize   = 256

	// CMND threshold below which a lag is accepted as periodic.
	yinThreshold = 0.15

	// Frames quieter than this RMS are reported unvoiced outright.
	silenceRMS = 1e-3
)

// Tracker runs a YIN-style estimator (cumulative mean normalized difference
// over an FFT-derived autocorrelation) frame by frame.
type Tracker struct {
	frameSize int
	hopSize   int
	rng       Range
}

func NewTracker(rng Range) *Tracker {
	return &Tracker{
		frameSize: FrameSize,
		hopSize:   HopSize,
		rng:       rng,
	}
}

// Track produces one Observation per hop across the whole signal.
func (t *Tracker) Track(samples []float64, sampleRate int) ([]Observation, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if len(samples) < t.frameSize {
		return nil, errors.New("input shorter than one analysis frame")
	}

	minLag := int(float64(sampleRate) / t.rng.MaxHz)
	maxLag := int(math.Ceil(float64(sampleRate) / t.rng.MinHz))
	if minLag < 2 {
		minLag = 2
	}
	if maxLag >= t.frameSize/2 {
		return nil, errors.New("frequency range too low for the frame size")
	}

	observations := make([]Observation, 0, (len(samples)-t.frameSize)/t.hopSize+1)
	frame := make([]float64, t.frameSize)
	for start := 0; start+t.frameSize <= len(samples); start += t.hopSize {
		copy(frame, samples[start:start+t.frameSize])
		observations = append(observations, t.estimateFrame(frame, sampleRate, minLag, maxLag))
	}
	return observations, nil
}

func (t *Tracker) estimateFrame(frame []float64, sampleRate, minLag, maxLag int) Observation {
	if rms(frame) < silenceRMS {
		return Observation{}
	}

	d := differenceFunction(frame, maxLag)
	cmnd := cumulativeMeanNormalized(d)

	lag := absoluteThresholdLag(cmnd, minLag, maxLag)
	if lag < 0 {
		// No lag crossed the threshold; fall back to the best available one
		// and let its (low) confidence speak for itself.
		lag = minLag
		for tau := minLag; tau <= maxLag; tau++ {
			if cmnd[tau] < cmnd[lag] {
				lag = tau
			}
		}
	}

	refined := parabolicInterpolation(cmnd, lag, minLag, maxLag)
	confidence := 1.0 - cmnd[lag]
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	freq := float64(sampleRate) / refined
	if freq < t.rng.MinHz || freq > t.rng.MaxHz {
		return Observation{}
	}
	return Observation{FreqHz: freq, Confidence: confidence}
}

// differenceFunction computes d(tau) = 2*(r(0) - r(tau)) for tau in
// [0,maxLag], with the autocorrelation r obtained via zero-padded FFT.
func differenceFunction(frame []float64, maxLag int) []float64 {
	n := len(frame)
	padded := make([]float64, 2*n)
	copy(padded, frame)

	spectrum := fft.FFTReal(padded)
	for i := range spectrum {
		spectrum[i] = complex(cmplx.Abs(spectrum[i])*cmplx.Abs(spectrum[i]), 0)
	}
	corr := fft.IFFT(spectrum)

	r0 := real(corr[0])
	d := make([]float64, maxLag+1)
	for tau := 1; tau <= maxLag; tau++ {
		d[tau] = 2 * (r0 - real(corr[tau]))
		if d[tau] < 0 {
			d[tau] = 0
		}
	}
	return d
}

// cumulativeMeanNormalized converts the raw difference function into the YIN
// CMND: d'(0)=1, d'(tau) = d(tau)*tau / sum(d(1..tau)).
func cumulativeMeanNormalized(d []float64) []float64 {
	out := make([]float64, len(d))
	out[0] = 1
	var runningSum float64
	for tau := 1; tau < len(d); tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			out[tau] = 1
		} else {
			out[tau] = d[tau] * float64(tau) / runningSum
		}
	}
	return out
}

// absoluteThresholdLag returns the first lag under the YIN threshold,
// descended to its local minimum, or -1 if none qualifies.
func absoluteThresholdLag(cmnd []float64, minLag, maxLag int) int {
	for tau := minLag; tau <= maxLag; tau++ {
		if cmnd[tau] < yinThreshold {
			for tau+1 <= maxLag && cmnd[tau+1] < cmnd[tau] {
				tau++
			}
			return tau
		}
	}
	return -1
}

// parabolicInterpolation refines an integer lag to sub-sample precision by
// fitting a parabola through the CMND values around it.
func parabolicInterpolation(cmnd []float64, lag, minLag, maxLag int) float64 {
	if lag <= minLag || lag >= maxLag {
		return float64(lag)
	}
	s0 := cmnd[lag-1]
	s1 := cmnd[lag]
	s2 := cmnd[lag+1]
	denom := 2 * (2*s1 - s2 - s0)
	if denom == 0 {
		return float64(lag)
	}
	return float64(lag) + (s2-s0)/denom
}

func rms(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}
