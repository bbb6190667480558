package theory

import "math/bits"

// PitchClassSet is a set of pitch classes packed into the low 12 bits.
type PitchClassSet uint16

func NewPitchClassSet(pcs ...PitchClass) PitchClassSet {
	var s PitchClassSet
	for _, pc := range pcs {
		s = s.Add(pc)
	}
	return s
}

func (s PitchClassSet) Add(pc PitchClass) PitchClassSet {
	return s | 1<<uint(pc)
}

func (s PitchClassSet) Contains(pc PitchClass) bool {
	return s&(1<<uint(pc)) != 0
}

func (s PitchClassSet) Size() int {
	return bits.OnesCount16(uint16(s))
}

func (s PitchClassSet) Intersect(other PitchClassSet) PitchClassSet {
	return s & other
}

// Slice returns the member pitch classes in ascending order.
func (s PitchClassSet) Slice() []PitchClass {
	out := make([]PitchClass, 0, s.Size())
	for pc := PitchClass(0); pc < NumPitchClasses; pc++ {
		if s.Contains(pc) {
			out = append(out, pc)
		}
	}
	return out
}

// Names returns the note names of the members in pitch-class order.
func (s PitchClassSet) Names() []string {
	pcs := s.Slice()
	out := make([]string, len(pcs))
	for i, pc := range pcs {
		out[i] = pc.String()
	}
	return out
}
