package pitch

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestTrackPureSine(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		rng  Range
	}{
		{"A4 voice", 440.0, VoiceRange()},
		{"A3 guitar", 220.0, GuitarRange()},
		{"E2 guitar", 82.41, GuitarRange()},
	}

	const sampleRate = 22050
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(tt.rng)
			observations, err := tracker.Track(sine(tt.freq, sampleRate, 1.0), sampleRate)
			if err != nil {
				t.Fatalf("Track: %v", err)
			}
			if len(observations) == 0 {
				t.Fatal("no observations")
			}

			good := 0
			for _, o := range observations {
				if !o.Voiced() {
					continue
				}
				if math.Abs(o.FreqHz-tt.freq)/tt.freq < 0.01 && o.Confidence > 0.5 {
					good++
				}
			}
			// A clean periodic signal should be tracked in nearly every frame.
			if float64(good) < 0.9*float64(len(observations)) {
				t.Errorf("only %d/%d frames tracked %g Hz confidently", good, len(observations), tt.freq)
			}
		})
	}
}

func TestTrackSilence(t *testing.T) {
	tracker := NewTracker(GuitarRange())
	observations, err := tracker.Track(make([]float64, 22050), 22050)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	for i, o := range observations {
		if o.Voiced() {
			t.Fatalf("frame %d voiced at %g Hz on silence", i, o.FreqHz)
		}
		if o.Confidence != 0 {
			t.Fatalf("frame %d has confidence %g on silence", i, o.Confidence)
		}
	}
}

func TestTrackOutOfRangeFrequencyIsUnvoiced(t *testing.T) {
	// A 30 Hz fundamental sits below the guitar range, so no frame may claim
	// a pitch even though the signal is strongly periodic.
	tracker := NewTracker(GuitarRange())
	observations, err := tracker.Track(sine(30.0, 22050, 1.0), 22050)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	for i, o := range observations {
		if o.Voiced() && math.Abs(o.FreqHz-30.0) < 1.0 {
			t.Fatalf("frame %d reported the out-of-range fundamental", i)
		}
	}
}

func TestTrackInputValidation(t *testing.T) {
	tracker := NewTracker(GuitarRange())

	if _, err := tracker.Track(make([]float64, FrameSize-1), 22050); err == nil {
		t.Error("expected error for input shorter than a frame")
	}
	if _, err := tracker.Track(make([]float64, FrameSize), 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
	// A 10 Hz lower bound needs a longer lag than the frame can hold.
	low := NewTracker(Range{MinHz: 10, MaxHz: 1000})
	if _, err := low.Track(make([]float64, FrameSize*4), 22050); err == nil {
		t.Error("expected error for a range below the frame's reach")
	}
}

func TestObservationVoiced(t *testing.T) {
	if (Observation{}).Voiced() {
		t.Error("zero observation must be unvoiced")
	}
	if !(Observation{FreqHz: 440, Confidence: 0.9}).Voiced() {
		t.Error("440 Hz observation must be voiced")
	}
}

func TestTrackHopCount(t *testing.T) {
	tracker := NewTracker(GuitarRange())
	samples := sine(220, 22050, 0.5)
	observations, err := tracker.Track(samples, 22050)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	want := (len(samples)-FrameSize)/HopSize + 1
	if len(observations) != want {
		t.Errorf("got %d observations, want %d", len(observations), want)
	}
}
