// Package match ranks catalog scales by how well their pitch-class sets
// explain a performed phrase.
package match

import (
	"errors"
	"sort"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/theory"
)

// ErrEmptyInput guards against matching with zero performed pitch classes.
// Extraction guarantees a non-empty set, so hitting this means an upstream
// bug and must fail loudly instead of returning an empty ranking.
var ErrEmptyInput = errors.New("cannot match scales against an empty pitch-class set")

// Display cutoff defaults, matching the original result list.
const (
	DefaultMaxResults = 15
	DefaultScoreFloor = 0.5
)

// ScaleScore is one ranked candidate. Rank is shared across consecutive
// entries with equal scores (1,1,2,3,3,... style).
type ScaleScore struct {
	Scale theory.ScaleDefinition
	Score float64
	Rank  int
}

// Score rates every catalog entry as |performed ∩ scale| / |performed| and
// returns the list sorted by score descending. The sort is stable, so equal
// scores keep catalog declaration order; that keeps top-N selections
// reproducible when relative modes share a pitch-class set.
func Score(performed theory.PitchClassSet, catalog *theory.Catalog) ([]ScaleScore, error) {
	if performed.Size() == 0 {
		return nil, ErrEmptyInput
	}

	defs := catalog.Definitions()
	scores := make([]ScaleScore, len(defs))
	performedSize := float64(performed.Size())
	for i, def := range defs {
		scores[i] = ScaleScore{
			Scale: def,
			Score: float64(performed.Intersect(def.Set).Size()) / performedSize,
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	assignRanks(scores)
	return scores, nil
}

// assignRanks numbers entries so the rank only advances when the score
// changes from the previous entry.
func assignRanks(scores []ScaleScore) {
	rank := 0
	for i := range scores {
		if i == 0 || scores[i].Score != scores[i-1].Score {
			rank++
		}
		scores[i].Rank = rank
	}
}

// Truncate applies the display cutoff policy: at most maxEntries entries,
// and nothing scoring below floor. Whichever bound triggers first wins.
func Truncate(scores []ScaleScore, maxEntries int, floor float64) []ScaleScore {
	out := make([]ScaleScore, 0, maxEntries)
	for _, s := range scores {
		if len(out) >= maxEntries || s.Score < floor {
			break
		}
		out = append(out, s)
	}
	return out
}

// FilterByRoot keeps only the entries rooted at the requested pitch class,
// preserving relative order and re-deriving shared ranks on the filtered
// subsequence. A nil root passes the list through unchanged.
func FilterByRoot(scores []ScaleScore, root *theory.PitchClass) []ScaleScore {
	if root == nil {
		return scores
	}
	out := make([]ScaleScore, 0, len(scores))
	for _, s := range scores {
		if s.Scale.Key.Root == *root {
			out = append(out, s)
		}
	}
	assignRanks(out)
	return out
}
