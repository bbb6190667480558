package theory

import (
	"reflect"
	"testing"
)

func TestDegreeLabel(t *testing.T) {
	tests := []struct {
		pc   PitchClass
		root PitchClass
		want string
	}{
		{0, 0, "R"},
		{7, 0, "5"},
		{1, 0, "b9"},
		{6, 0, "#11/b5"},
		{0, 11, "b9"}, // wraps around the octave
		{2, 9, "11"},  // D against A root
		{9, 9, "R"},
	}

	for _, tt := range tests {
		if got := DegreeLabel(tt.pc, tt.root); got != tt.want {
			t.Errorf("DegreeLabel(%s, %s) = %q, want %q", tt.pc, tt.root, got, tt.want)
		}
	}
}

func TestDegreeLabelPanicsOnInvalidRoot(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for root 12")
		}
	}()
	DegreeLabel(0, 12)
}

func TestAnnotate(t *testing.T) {
	// E4, C4, G4 against a C root; output must come back sorted ascending.
	got := Annotate([]AbsoluteNote{64, 60, 67}, 0)

	want := []AnnotatedNote{
		{Note: 60, Name: "C", Octave: 4, Degree: "R"},
		{Note: 64, Name: "E", Octave: 4, Degree: "3"},
		{Note: 67, Name: "G", Octave: 4, Degree: "5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Annotate = %+v, want %+v", got, want)
	}
}

func TestAnnotateDoesNotMutateInput(t *testing.T) {
	notes := []AbsoluteNote{67, 60}
	Annotate(notes, 0)
	if notes[0] != 67 || notes[1] != 60 {
		t.Errorf("input slice reordered: %v", notes)
	}
}

func TestPitchClassSet(t *testing.T) {
	s := NewPitchClassSet(0, 4, 7)

	if s.Size() != 3 {
		t.Errorf("Size = %d, want 3", s.Size())
	}
	if !s.Contains(4) || s.Contains(5) {
		t.Error("Contains gave wrong membership")
	}

	other := NewPitchClassSet(4, 7, 11)
	if got := s.Intersect(other); got != NewPitchClassSet(4, 7) {
		t.Errorf("Intersect = %v", got.Names())
	}

	if got := s.Names(); !reflect.DeepEqual(got, []string{"C", "E", "G"}) {
		t.Errorf("Names = %v, want [C E G]", got)
	}

	// Adding a member twice is a no-op.
	if s.Add(4) != s {
		t.Error("double Add changed the set")
	}
}
