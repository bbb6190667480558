package theory

import "testing"

func TestNoteFromHz(t *testing.T) {
	tests := []struct {
		freq float64
		want AbsoluteNote
	}{
		{440.0, 69},    // A4 reference
		{261.626, 60},  // middle C
		{82.407, 40},   // guitar low E
		{1046.502, 84}, // C6
		{466.164, 70},  // A#4
	}

	for _, tt := range tests {
		if got := NoteFromHz(tt.freq); got != tt.want {
			t.Errorf("NoteFromHz(%.3f) = %d, want %d", tt.freq, got, tt.want)
		}
	}
}

func TestNoteFromHzQuarterToneRoundsUp(t *testing.T) {
	// Exactly halfway between A4 and A#4 in semitone space; math.Round
	// rounds half away from zero, so the result must always be 70.
	quarterTone := 440.0 * 1.0293022366434921 // 2^(0.5/12)
	for i := 0; i < 10; i++ {
		if got := NoteFromHz(quarterTone); got != 70 {
			t.Fatalf("NoteFromHz(quarter tone) = %d, want 70", got)
		}
	}
}

func TestAbsoluteNoteParts(t *testing.T) {
	tests := []struct {
		note   AbsoluteNote
		pc     PitchClass
		octave int
		str    string
	}{
		{60, 0, 4, "C4"},
		{69, 9, 4, "A4"},
		{61, 1, 4, "C#4"},
		{40, 4, 2, "E2"},
		{11, 11, -1, "B-1"},
	}

	for _, tt := range tests {
		if got := tt.note.PitchClass(); got != tt.pc {
			t.Errorf("%d.PitchClass() = %d, want %d", tt.note, got, tt.pc)
		}
		if got := tt.note.Octave(); got != tt.octave {
			t.Errorf("%d.Octave() = %d, want %d", tt.note, got, tt.octave)
		}
		if got := tt.note.String(); got != tt.str {
			t.Errorf("%d.String() = %q, want %q", tt.note, got, tt.str)
		}
	}
}

func TestParsePitchClass(t *testing.T) {
	tests := []struct {
		name    string
		want    PitchClass
		wantErr bool
	}{
		{"C", 0, false},
		{"C#", 1, false},
		{"f#", 6, false},
		{" B ", 11, false},
		{"H", 0, true},
		{"", 0, true},
		{"Cb", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePitchClass(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePitchClass(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePitchClass(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePitchClass(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestParseAbsoluteNote(t *testing.T) {
	tests := []struct {
		name    string
		want    AbsoluteNote
		wantErr bool
	}{
		{"C4", 60, false},
		{"F#3", 54, false},
		{"A-1", 9, false},
		{"E2", 40, false},
		{"C", 0, true},
		{"4", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAbsoluteNote(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAbsoluteNote(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAbsoluteNote(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAbsoluteNote(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestParseAbsoluteNoteRoundTrip(t *testing.T) {
	for n := AbsoluteNote(0); n < 128; n++ {
		parsed, err := ParseAbsoluteNote(n.String())
		if err != nil {
			t.Fatalf("round trip of %s failed: %v", n, err)
		}
		if parsed != n {
			t.Fatalf("round trip of %s = %d, want %d", n, parsed, n)
		}
	}
}
