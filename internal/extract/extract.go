// Package extract turns a raw pitch/confidence stream into the set of notes
// a listener would say were actually played, suppressing one-off misreads
// like octave errors and transients.
package extract

import (
	"errors"
	"sort"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/pitch"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/theory"
)

// ErrNoPitchDetected means no observation survived the confidence filter.
// The caller can re-run with a lower threshold or re-capture audio.
var ErrNoPitchDetected = errors.New("no pitch detected above the confidence threshold")

// fallbackTopNotes bounds the fallback result when no single note reaches
// the support threshold (e.g. a fast run with no repeated note).
const fallbackTopNotes = 5

type Config struct {
	// ConfidenceThreshold drops frames at or below this voicing confidence.
	ConfidenceThreshold float64
	// MinSupportFraction is the share of surviving frames a note needs to
	// count as performed.
	MinSupportFraction float64
}

// DefaultConfig matches the guitar build of the original app: a permissive
// confidence cut with a low support floor, so brief passing tones survive.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
		MinSupportFraction:  0.02,
	}
}

// VoiceConfig is the stricter preset used for voice and horn phrases.
func VoiceConfig() Config {
	return Config{
		ConfidenceThreshold: 0.8,
		MinSupportFraction:  0.05,
	}
}

// NoteSet is the extraction result: the performed absolute notes (ascending)
// and their octave-independent pitch classes.
type NoteSet struct {
	Notes        []theory.AbsoluteNote
	PitchClasses theory.PitchClassSet
}

// Extract filters the stream by confidence, quantizes each surviving
// frequency to the nearest equal-temperament note, and keeps the notes with
// enough support. The result is never empty when any voiced frame existed.
func Extract(observations []pitch.Observation, cfg Config) (*NoteSet, error) {
	counts := make(map[theory.AbsoluteNote]int)
	total := 0
	for _, obs := range observations {
		if !obs.Voiced() || obs.Confidence <= cfg.ConfidenceThreshold {
			continue
		}
		counts[theory.NoteFromHz(obs.FreqHz)]++
		total++
	}
	if total == 0 {
		return nil, ErrNoPitchDetected
	}

	minCount := cfg.MinSupportFraction * float64(total)
	notes := make([]theory.AbsoluteNote, 0, len(counts))
	for note, count := range counts {
		if float64(count) >= minCount {
			notes = append(notes, note)
		}
	}

	if len(notes) == 0 {
		notes = topNotesByCount(counts, fallbackTopNotes)
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })

	var pcs theory.PitchClassSet
	for _, n := range notes {
		pcs = pcs.Add(n.PitchClass())
	}

	return &NoteSet{Notes: notes, PitchClasses: pcs}, nil
}

// topNotesByCount returns the k most frequent notes; ties break toward the
// lower note so the fallback stays deterministic.
func topNotesByCount(counts map[theory.AbsoluteNote]int, k int) []theory.AbsoluteNote {
	type entry struct {
		note  theory.AbsoluteNote
		count int
	}
	entries := make([]entry, 0, len(counts))
	for n, c := range counts {
		entries = append(entries, entry{note: n, count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].note < entries[j].note
	})

	if k > len(entries) {
		k = len(entries)
	}
	out := make([]theory.AbsoluteNote, k)
	for i := 0; i < k; i++ {
		out[i] = entries[i].note
	}
	return out
}
