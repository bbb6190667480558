package theory

import (
	"fmt"
	"math"
	"strings"
)

// NumPitchClasses is the size of the chromatic octave.
const NumPitchClasses = 12

// Reference tuning: A4 = MIDI note 69 = 440 Hz.
const (
	refNote   = 69
	refFreqHz = 440.0
)

// PitchClass is a note identity modulo one octave: 0=C .. 11=B.
type PitchClass int

// noteNames uses sharp spellings, matching how results are displayed.
var noteNames = [NumPitchClasses]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

func (pc PitchClass) Valid() bool {
	return pc >= 0 && pc < NumPitchClasses
}

func (pc PitchClass) String() string {
	if !pc.Valid() {
		return fmt.Sprintf("PitchClass(%d)", int(pc))
	}
	return noteNames[pc]
}

// ParsePitchClass converts a note name like "C" or "f#" to a PitchClass.
func ParsePitchClass(name string) (PitchClass, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range noteNames {
		if n == normalized {
			return PitchClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown note name: %q", name)
}

// AbsoluteNote is a MIDI-style note number: pitch class plus octave.
// Middle C (C4) is 60.
type AbsoluteNote int

// ParseAbsoluteNote converts a display name like "C4" or "F#3" back to a
// note number; the octave may be negative ("A-1").
func ParseAbsoluteNote(s string) (AbsoluteNote, error) {
	s = strings.TrimSpace(s)
	split := len(s)
	for i, r := range s {
		if r >= '0' && r <= '9' || r == '-' {
			if i == 0 {
				break
			}
			split = i
			break
		}
	}
	if split == 0 || split == len(s) {
		return 0, fmt.Errorf("malformed note name: %q", s)
	}
	pc, err := ParsePitchClass(s[:split])
	if err != nil {
		return 0, err
	}
	var octave int
	if _, err := fmt.Sscanf(s[split:], "%d", &octave); err != nil {
		return 0, fmt.Errorf("malformed octave in %q: %w", s, err)
	}
	return AbsoluteNote((octave+1)*NumPitchClasses + int(pc)), nil
}

func (n AbsoluteNote) PitchClass() PitchClass {
	return PitchClass(((int(n) % NumPitchClasses) + NumPitchClasses) % NumPitchClasses)
}

// Octave follows the MIDI convention where C4 = 60.
func (n AbsoluteNote) Octave() int {
	return int(n)/NumPitchClasses - 1
}

func (n AbsoluteNote) String() string {
	return fmt.Sprintf("%s%d", n.PitchClass(), n.Octave())
}

// Hz returns the equal-temperament frequency of the note.
func (n AbsoluteNote) Hz() float64 {
	return refFreqHz * math.Pow(2, float64(int(n)-refNote)/NumPitchClasses)
}

// NoteFromHz quantizes a frequency to the nearest equal-temperament note.
// math.Round rounds half away from zero, so ties resolve deterministically.
func NoteFromHz(freqHz float64) AbsoluteNote {
	return AbsoluteNote(math.Round(NumPitchClasses*math.Log2(freqHz/refFreqHz) + refNote))
}
