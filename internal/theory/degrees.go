package theory

import (
	"fmt"
	"sort"
)

// degreeLabels names each chromatic interval from a root. The labels describe
// chromatic distance, not scale-specific function, so notes outside a chosen
// scale still get a sensible altered-tension label.
var degreeLabels = [NumPitchClasses]string{
	"R", "b9", "9", "b3", "3", "11", "#11/b5", "5", "b13", "13", "b7", "7",
}

// DegreeLabel returns the interval name of pc relative to root.
// An out-of-range root is a caller bug, not a runtime condition.
func DegreeLabel(pc, root PitchClass) string {
	if !root.Valid() {
		panic(fmt.Sprintf("theory: invalid scale root %d", int(root)))
	}
	interval := ((int(pc)-int(root))%NumPitchClasses + NumPitchClasses) % NumPitchClasses
	return degreeLabels[interval]
}

// AnnotatedNote is one performed note with its display name and its degree
// relative to a chosen scale root.
type AnnotatedNote struct {
	Note   AbsoluteNote
	Name   string
	Octave int
	Degree string
}

// Annotate labels each performed note against the chosen root, in ascending
// note order for stable, musician-readable output.
func Annotate(notes []AbsoluteNote, root PitchClass) []AnnotatedNote {
	sorted := make([]AbsoluteNote, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]AnnotatedNote, len(sorted))
	for i, n := range sorted {
		out[i] = AnnotatedNote{
			Note:   n,
			Name:   n.PitchClass().String(),
			Octave: n.Octave(),
			Degree: DegreeLabel(n.PitchClass(), root),
		}
	}
	return out
}
