package extract

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/pitch"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/theory"
)

func obs(freq, conf float64) pitch.Observation {
	return pitch.Observation{FreqHz: freq, Confidence: conf}
}

// repeat returns n copies of the same observation.
func repeat(o pitch.Observation, n int) []pitch.Observation {
	out := make([]pitch.Observation, n)
	for i := range out {
		out[i] = o
	}
	return out
}

const (
	freqC4  = 261.626 // note 60
	freqCs4 = 277.183 // note 61
	freqE4  = 329.628 // note 64
	freqG4  = 391.995 // note 67
)

func TestExtractSuppressesOneOffMisread(t *testing.T) {
	// 100 solid frames of C4 and a single C#4 glitch: with 5% support the
	// glitch needs ~5 frames, so only C4 survives.
	observations := repeat(obs(freqC4, 0.9), 100)
	observations = append(observations, obs(freqCs4, 0.9))

	cfg := Config{ConfidenceThreshold: 0.5, MinSupportFraction: 0.05}
	got, err := Extract(observations, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if want := []theory.AbsoluteNote{60}; !reflect.DeepEqual(got.Notes, want) {
		t.Errorf("Notes = %v, want %v", got.Notes, want)
	}
	if got.PitchClasses != theory.NewPitchClassSet(0) {
		t.Errorf("PitchClasses = %v, want [C]", got.PitchClasses.Names())
	}
}

func TestExtractNoPitchDetected(t *testing.T) {
	// Every frame sits below the confidence threshold.
	observations := repeat(obs(freqC4, 0.2), 50)

	_, err := Extract(observations, DefaultConfig())
	if !errors.Is(err, ErrNoPitchDetected) {
		t.Fatalf("err = %v, want ErrNoPitchDetected", err)
	}
}

func TestExtractConfidenceThresholdIsStrict(t *testing.T) {
	// A frame exactly at the threshold is dropped; strictly above survives.
	cfg := Config{ConfidenceThreshold: 0.5, MinSupportFraction: 0.02}

	if _, err := Extract(repeat(obs(freqC4, 0.5), 10), cfg); !errors.Is(err, ErrNoPitchDetected) {
		t.Errorf("frames at threshold: err = %v, want ErrNoPitchDetected", err)
	}

	got, err := Extract(repeat(obs(freqC4, 0.5001), 10), cfg)
	if err != nil {
		t.Fatalf("frames above threshold: %v", err)
	}
	if len(got.Notes) != 1 || got.Notes[0] != 60 {
		t.Errorf("Notes = %v, want [60]", got.Notes)
	}
}

func TestExtractIgnoresUnvoicedFrames(t *testing.T) {
	observations := []pitch.Observation{
		{FreqHz: 0, Confidence: 0.99},
		{FreqHz: 0, Confidence: 0.99},
	}
	if _, err := Extract(observations, DefaultConfig()); !errors.Is(err, ErrNoPitchDetected) {
		t.Errorf("err = %v, want ErrNoPitchDetected", err)
	}
}

func TestExtractFallbackKeepsTopNotes(t *testing.T) {
	// Seven distinct notes, one frame each, with an impossible support bar:
	// the fallback still returns the five most frequent (ties toward lower
	// notes) instead of an empty set.
	var observations []pitch.Observation
	for i := 0; i < 7; i++ {
		observations = append(observations, obs(freqC4*math.Pow(2, float64(i)/12), 0.9))
	}

	cfg := Config{ConfidenceThreshold: 0.5, MinSupportFraction: 0.9}
	got, err := Extract(observations, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []theory.AbsoluteNote{60, 61, 62, 63, 64}
	if !reflect.DeepEqual(got.Notes, want) {
		t.Errorf("fallback Notes = %v, want %v", got.Notes, want)
	}
}

func TestExtractCollapsesOctavesIntoPitchClasses(t *testing.T) {
	// C4 and C5 are distinct notes but one pitch class.
	observations := append(repeat(obs(freqC4, 0.9), 10), repeat(obs(freqC4*2, 0.9), 10)...)

	got, err := Extract(observations, DefaultConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if want := []theory.AbsoluteNote{60, 72}; !reflect.DeepEqual(got.Notes, want) {
		t.Errorf("Notes = %v, want %v", got.Notes, want)
	}
	if got.PitchClasses.Size() != 1 {
		t.Errorf("PitchClasses = %v, want just [C]", got.PitchClasses.Names())
	}
}

func TestPresets(t *testing.T) {
	guitar := DefaultConfig()
	if guitar.ConfidenceThreshold != 0.5 || guitar.MinSupportFraction != 0.02 {
		t.Errorf("DefaultConfig = %+v", guitar)
	}
	voice := VoiceConfig()
	if voice.ConfidenceThreshold != 0.8 || voice.MinSupportFraction != 0.05 {
		t.Errorf("VoiceConfig = %+v", voice)
	}
}
