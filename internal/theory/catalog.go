package theory

import "fmt"

// NamedPattern is a scale shape: ordered semitone offsets from the root.
// Offsets always start at 0, stay in [0,11] and strictly increase, so no two
// offsets can collide modulo 12.
type NamedPattern struct {
	Name    string
	Offsets []int
}

// DefaultPatterns is the shipped pattern table. Order matters: it fixes the
// tie-break order of equal-scoring scales in ranked results.
var DefaultPatterns = []NamedPattern{
	{"Ionian (Major)", []int{0, 2, 4, 5, 7, 9, 11}},
	{"Dorian", []int{0, 2, 3, 5, 7, 9, 10}},
	{"Phrygian", []int{0, 1, 3, 5, 7, 8, 10}},
	{"Lydian", []int{0, 2, 4, 6, 7, 9, 11}},
	{"Mixo-lydian", []int{0, 2, 4, 5, 7, 9, 10}},
	{"Aeolian (Minor)", []int{0, 2, 3, 5, 7, 8, 10}},
	{"Locrian", []int{0, 1, 3, 5, 6, 8, 10}},
	{"Altered", []int{0, 1, 3, 4, 6, 8, 10}},
	{"Combination of Diminished", []int{0, 1, 3, 4, 6, 7, 9, 10}},
	{"Diminished (W-H)", []int{0, 2, 3, 5, 6, 8, 9, 11}},
	{"Wholetone", []int{0, 2, 4, 6, 8, 10}},
	{"Phrygian Dominant", []int{0, 1, 4, 5, 7, 8, 10}},
	{"Lydian Dominant", []int{0, 2, 4, 6, 7, 9, 10}},
	{"Major Pentatonic", []int{0, 2, 4, 7, 9}},
	{"Minor Pentatonic", []int{0, 3, 5, 7, 10}},
	{"Blues Scale", []int{0, 3, 5, 6, 7, 10}},
	{"Bebop Dominant", []int{0, 2, 4, 5, 7, 9, 10, 11}},
	{"Harmonic Minor", []int{0, 2, 3, 5, 7, 8, 11}},
}

// ScaleKey identifies a catalog entry structurally, independent of display
// formatting.
type ScaleKey struct {
	Root    PitchClass
	Pattern string
}

// ScaleDefinition is one (root, pattern) pair with its derived pitch-class set.
type ScaleDefinition struct {
	Key ScaleKey
	Set PitchClassSet
}

// Name formats the definition for display, e.g. "C# Altered".
func (d ScaleDefinition) Name() string {
	return fmt.Sprintf("%s %s", d.Key.Root, d.Key.Pattern)
}

// Catalog is the immutable universe of candidate scales: every pattern
// transposed to all 12 roots. Built once per session and read-only after.
type Catalog struct {
	defs  []ScaleDefinition
	index map[ScaleKey]int
}

// ValidatePattern checks the invariants a shipped pattern must satisfy.
func ValidatePattern(p NamedPattern) error {
	if p.Name == "" {
		return fmt.Errorf("pattern with empty name")
	}
	if len(p.Offsets) == 0 {
		return fmt.Errorf("pattern %q has no offsets", p.Name)
	}
	if p.Offsets[0] != 0 {
		return fmt.Errorf("pattern %q does not start at 0", p.Name)
	}
	for i, off := range p.Offsets {
		if off < 0 || off >= NumPitchClasses {
			return fmt.Errorf("pattern %q offset %d out of range [0,11]", p.Name, off)
		}
		if i > 0 && off <= p.Offsets[i-1] {
			return fmt.Errorf("pattern %q offsets not strictly increasing at index %d", p.Name, i)
		}
	}
	return nil
}

// BuildCatalog enumerates all 12*len(patterns) scale definitions.
// Declaration order is root-major, then pattern-minor: C Ionian, C Dorian,
// ..., C# Ionian, and so on. Pattern validation failures are configuration
// errors and abort the build.
func BuildCatalog(patterns []NamedPattern) (*Catalog, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no scale patterns supplied")
	}

	c := &Catalog{
		defs:  make([]ScaleDefinition, 0, NumPitchClasses*len(patterns)),
		index: make(map[ScaleKey]int, NumPitchClasses*len(patterns)),
	}

	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if err := ValidatePattern(p); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate pattern name %q", p.Name)
		}
		seen[p.Name] = true
	}

	for root := PitchClass(0); root < NumPitchClasses; root++ {
		for _, p := range patterns {
			var set PitchClassSet
			for _, off := range p.Offsets {
				set = set.Add(PitchClass((int(root) + off) % NumPitchClasses))
			}
			key := ScaleKey{Root: root, Pattern: p.Name}
			c.index[key] = len(c.defs)
			c.defs = append(c.defs, ScaleDefinition{Key: key, Set: set})
		}
	}

	return c, nil
}

// MustBuildCatalog builds the default catalog and panics on a bad pattern
// table; the shipped table is validated by tests.
func MustBuildCatalog() *Catalog {
	c, err := BuildCatalog(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return c
}

// Definitions returns the catalog entries in declaration order. Callers must
// not mutate the returned slice.
func (c *Catalog) Definitions() []ScaleDefinition {
	return c.defs
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Lookup finds a definition by structured key.
func (c *Catalog) Lookup(key ScaleKey) (ScaleDefinition, bool) {
	i, ok := c.index[key]
	if !ok {
		return ScaleDefinition{}, false
	}
	return c.defs[i], true
}
