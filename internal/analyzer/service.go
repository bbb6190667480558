package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/audio"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/extract"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/match"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/pitch"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/storage"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/theory"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/pkg/logger"
)

// Logger is the logging surface the service needs; pkg/logger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ErrSuperseded means a newer Analyze call started before this one finished;
// its result was discarded so only the latest run's results become visible.
var ErrSuperseded = errors.New("analysis superseded by a newer run")

// Service wires the extraction and matching pipeline over an immutable scale
// catalog. The pipeline itself is pure; the service adds ingestion,
// persistence and run supersession.
type Service struct {
	catalog    *theory.Catalog
	db         *storage.DBClient
	log        Logger
	config     *Config
	generation atomic.Uint64
}

func NewService(opts ...Option) (*Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	catalog, err := theory.BuildCatalog(theory.DefaultPatterns)
	if err != nil {
		return nil, fmt.Errorf("building scale catalog: %w", err)
	}

	db := cfg.Storage
	if db == nil {
		db, err = storage.NewDBClientWithPath(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening analysis history db: %w", err)
		}
	}

	return &Service{
		catalog: catalog,
		db:      db,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// Result is one completed analysis.
type Result struct {
	RunID        string
	Source       string
	Title        string
	Notes        []theory.AbsoluteNote
	NoteNames    []string
	PitchClasses theory.PitchClassSet
	Scales       []match.ScaleScore
	DurationSec  float64
}

// Analyze runs the full pipeline on an audio file: normalize, track pitch,
// extract the performed note set, and rank candidate scales. If a newer
// Analyze call starts before this one finishes, the result is dropped and
// ErrSuperseded is returned.
func (s *Service) Analyze(ctx context.Context, audioPath string) (*Result, error) {
	gen := s.generation.Add(1)
	s.log.Infof("Analyzing phrase: %s (instrument=%s)", audioPath, s.config.Instrument)

	// 1. Normalize to mono WAV at the analysis rate.
	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}

	samples, sampleRate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}
	duration := float64(len(samples)) / float64(sampleRate)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Per-frame pitch observations.
	tracker := pitch.NewTracker(trackerRange(s.config.Instrument))
	observations, err := tracker.Track(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch tracking failed: %w", err)
	}
	s.log.Debugf("Tracked %d frames over %.2fs", len(observations), duration)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Performed note set.
	noteSet, err := extract.Extract(observations, s.config.Extraction)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Detected notes: %s", strings.Join(noteSet.PitchClasses.Names(), " "))

	// 4. Rank candidate scales.
	ranked, err := match.Score(noteSet.PitchClasses, s.catalog)
	if err != nil {
		return nil, err
	}
	scales := match.Truncate(ranked, s.config.MaxResults, s.config.ScoreFloor)

	if s.generation.Load() != gen {
		s.log.Warnf("Discarding stale analysis of %s", audioPath)
		return nil, ErrSuperseded
	}

	result := &Result{
		Source:       audioPath,
		Notes:        noteSet.Notes,
		NoteNames:    noteSet.PitchClasses.Names(),
		PitchClasses: noteSet.PitchClasses,
		Scales:       scales,
		DurationSec:  duration,
	}

	runID, err := s.saveRun(result)
	if err != nil {
		// History is a convenience; the analysis itself still succeeded.
		s.log.Warnf("Failed to persist analysis run: %v", err)
	} else {
		result.RunID = runID
	}

	if len(scales) > 0 {
		s.log.Infof("Best match: %s (%.0f%%)", scales[0].Scale.Name(), scales[0].Score*100)
	} else {
		s.log.Infof("No scale reached the %.0f%% display floor", s.config.ScoreFloor*100)
	}
	return result, nil
}

// AnalyzeYouTube downloads the audio of a YouTube video and analyzes it.
func (s *Service) AnalyzeYouTube(ctx context.Context, youtubeURL string) (*Result, error) {
	s.log.Infof("Downloading audio from %s", youtubeURL)
	downloadedPath, meta, err := audio.DownloadYouTubeAudio(ctx, youtubeURL, s.config.TempDir)
	if err != nil {
		return nil, fmt.Errorf("youtube download failed: %w", err)
	}

	result, err := s.Analyze(ctx, downloadedPath)
	if err != nil {
		return nil, err
	}
	result.Source = youtubeURL
	result.Title = meta.Title
	return result, nil
}

// FilterByRoot restricts an already-ranked list to one root. Pure and fast;
// safe to call on the interactive path.
func (s *Service) FilterByRoot(scales []match.ScaleScore, root *theory.PitchClass) []match.ScaleScore {
	return match.FilterByRoot(scales, root)
}

// Annotate labels performed notes with their degree relative to a chosen
// scale root.
func (s *Service) Annotate(notes []theory.AbsoluteNote, root theory.PitchClass) []theory.AnnotatedNote {
	return theory.Annotate(notes, root)
}

// Catalog exposes the immutable scale universe (for listing and selection).
func (s *Service) Catalog() *theory.Catalog {
	return s.catalog
}

func (s *Service) saveRun(result *Result) (string, error) {
	noteStrings := make([]string, len(result.Notes))
	for i, n := range result.Notes {
		noteStrings[i] = n.String()
	}

	run := &storage.AnalysisRun{
		Source:        result.Source,
		Title:         result.Title,
		Instrument:    s.config.Instrument,
		DetectedNotes: strings.Join(noteStrings, " "),
		PitchClasses:  strings.Join(result.PitchClasses.Names(), " "),
		DurationMs:    int(result.DurationSec * 1000),
	}
	if len(result.Scales) > 0 {
		run.TopScale = result.Scales[0].Scale.Name()
		run.TopScore = result.Scales[0].Score
	}
	return s.db.SaveRun(run)
}

// ListRuns returns the persisted analysis history, newest first.
func (s *Service) ListRuns() ([]storage.AnalysisRun, error) {
	return s.db.ListRuns()
}

func (s *Service) GetRun(id string) (*storage.AnalysisRun, error) {
	return s.db.GetRunByID(id)
}

func (s *Service) DeleteRun(id string) error {
	return s.db.DeleteRunByID(id)
}

func (s *Service) Close() error {
	return s.db.Close()
}
