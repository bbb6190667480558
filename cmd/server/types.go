package main

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ScaleScoreDTO is one ranked scale in an analysis response.
type ScaleScoreDTO struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Root  string  `json:"root"`
	Score float64 `json:"score"`
}

// DegreeDTO is one performed note labeled against a chosen root.
type DegreeDTO struct {
	Note   string `json:"note"`
	Octave int    `json:"octave"`
	Degree string `json:"degree"`
}

// AnalyzeResponse is the response for POST /api/analyze.
type AnalyzeResponse struct {
	RunID        string          `json:"run_id,omitempty"`
	Source       string          `json:"source"`
	DurationSec  float64         `json:"duration_sec"`
	Notes        []string        `json:"notes"`
	PitchClasses []string        `json:"pitch_classes"`
	Scales       []ScaleScoreDTO `json:"scales"`
	Degrees      []DegreeDTO     `json:"degrees,omitempty"`
}

// ScaleDTO is one catalog entry in GET /api/scales.
type ScaleDTO struct {
	Name    string   `json:"name"`
	Root    string   `json:"root"`
	Pattern string   `json:"pattern"`
	Notes   []string `json:"notes"`
}
