package analyzer

import (
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/audio"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/extract"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/match"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/pitch"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/storage"
)

// Instrument presets select a tracked frequency range and extraction
// defaults together.
const (
	InstrumentGuitar = "guitar"
	InstrumentVoice  = "voice"
)

type Config struct {
	DBPath     string
	TempDir    string
	SampleRate int
	Instrument string
	Extraction extract.Config
	MaxResults int
	ScoreFloor float64
	Logger     Logger
	Storage    *storage.DBClient
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithInstrument applies an instrument preset; it also resets the extraction
// parameters to the preset's defaults, so apply it before the fine-grained
// extraction options.
func WithInstrument(instrument string) Option {
	return func(c *Config) {
		c.Instrument = instrument
		c.Extraction = extractionDefaults(instrument)
	}
}

func WithConfidenceThreshold(threshold float64) Option {
	return func(c *Config) {
		c.Extraction.ConfidenceThreshold = threshold
	}
}

func WithMinSupportFraction(fraction float64) Option {
	return func(c *Config) {
		c.Extraction.MinSupportFraction = fraction
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.MaxResults = n
	}
}

func WithScoreFloor(floor float64) Option {
	return func(c *Config) {
		c.ScoreFloor = floor
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(db *storage.DBClient) Option {
	return func(c *Config) {
		c.Storage = db
	}
}

func extractionDefaults(instrument string) extract.Config {
	if instrument == InstrumentVoice {
		return extract.VoiceConfig()
	}
	return extract.DefaultConfig()
}

func trackerRange(instrument string) pitch.Range {
	if instrument == InstrumentVoice {
		return pitch.VoiceRange()
	}
	return pitch.GuitarRange()
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     storage.DefaultDBFile,
		TempDir:    "/tmp",
		SampleRate: audio.DefaultSampleRate,
		Instrument: InstrumentGuitar,
		Extraction: extractionDefaults(InstrumentGuitar),
		MaxResults: match.DefaultMaxResults,
		ScoreFloor: match.DefaultScoreFloor,
	}
}
