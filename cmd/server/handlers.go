package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/analyzer"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/extract"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/theory"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/pkg/logger"
	"gorm.io/gorm"
)

const maxUploadBytes = 64 << 20 // 64 MiB

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	service *analyzer.Service
	config  *ServerConfig
	log     analyzer.Logger
}

// NewServer creates a new server instance.
func NewServer(service *analyzer.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("Listening on %s", addr)
	return http.ListenAndServe(addr, s.setupRoutes())
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "MelodyAnalyzer4Jazz API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"analyze":        "POST /api/analyze",
			"scales":         "GET /api/scales",
			"listAnalyses":   "GET /api/analyses",
			"getAnalysis":    "GET /api/analyses/{id}",
			"deleteAnalysis": "DELETE /api/analyses/{id}",
			"degrees":        "GET /api/analyses/{id}/degrees?root=C",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze handles POST /api/analyze: a multipart upload with an
// "audio" file part plus an optional "root" field restricting the result to
// one root (which also adds degree labels).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing 'audio' file part")
		return
	}
	defer file.Close()

	var rootFilter *theory.PitchClass
	if rootName := r.FormValue("root"); rootName != "" {
		pc, err := theory.ParsePitchClass(rootName)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		rootFilter = &pc
	}

	uploadPath := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	dst, err := os.Create(uploadPath)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(uploadPath)

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		s.respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	dst.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.service.Analyze(ctx, uploadPath)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrNoPitchDetected):
			s.respondError(w, http.StatusUnprocessableEntity, "could not detect a clear melody in the recording")
		case errors.Is(err, analyzer.ErrSuperseded):
			s.respondError(w, http.StatusConflict, "analysis superseded by a newer request")
		default:
			s.log.Errorf("Analyze failed: %v", err)
			s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("analysis failed: %v", err))
		}
		return
	}

	s.respondJSON(w, http.StatusOK, s.buildAnalyzeResponse(result, rootFilter))
}

func (s *Server) buildAnalyzeResponse(result *analyzer.Result, rootFilter *theory.PitchClass) AnalyzeResponse {
	noteNames := make([]string, len(result.Notes))
	for i, n := range result.Notes {
		noteNames[i] = n.String()
	}

	scales := s.service.FilterByRoot(result.Scales, rootFilter)
	scaleDTOs := make([]ScaleScoreDTO, len(scales))
	for i, sc := range scales {
		scaleDTOs[i] = ScaleScoreDTO{
			Rank:  sc.Rank,
			Name:  sc.Scale.Name(),
			Root:  sc.Scale.Key.Root.String(),
			Score: sc.Score,
		}
	}

	resp := AnalyzeResponse{
		RunID:        result.RunID,
		Source:       result.Source,
		DurationSec:  result.DurationSec,
		Notes:        noteNames,
		PitchClasses: result.PitchClasses.Names(),
		Scales:       scaleDTOs,
	}

	if rootFilter != nil {
		for _, a := range s.service.Annotate(result.Notes, *rootFilter) {
			resp.Degrees = append(resp.Degrees, DegreeDTO{Note: a.Name, Octave: a.Octave, Degree: a.Degree})
		}
	}
	return resp
}

// handleScales handles GET /api/scales[?root=C]
func (s *Server) handleScales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	var rootFilter *theory.PitchClass
	if rootName := r.URL.Query().Get("root"); rootName != "" {
		pc, err := theory.ParsePitchClass(rootName)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		rootFilter = &pc
	}

	var scales []ScaleDTO
	for _, def := range s.service.Catalog().Definitions() {
		if rootFilter != nil && def.Key.Root != *rootFilter {
			continue
		}
		scales = append(scales, ScaleDTO{
			Name:    def.Name(),
			Root:    def.Key.Root.String(),
			Pattern: def.Key.Pattern,
			Notes:   def.Set.Names(),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"scales": scales,
		"count":  len(scales),
	})
}

// handleAnalyses handles GET /api/analyses
func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	runs, err := s.service.ListRuns()
	if err != nil {
		s.log.Errorf("ListRuns failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": runs,
		"count":    len(runs),
	})
}

// handleAnalysis handles GET/DELETE /api/analyses/{id} and
// GET /api/analyses/{id}/degrees?root=C
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.respondError(w, http.StatusBadRequest, "missing analysis id")
		return
	}
	runID := parts[0]

	if len(parts) == 2 && parts[1] == "degrees" {
		s.handleDegrees(w, r, runID)
		return
	}
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.service.GetRun(runID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.respondError(w, http.StatusNotFound, "analysis not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, "failed to fetch analysis")
			return
		}
		s.respondJSON(w, http.StatusOK, run)
	case http.MethodDelete:
		if err := s.service.DeleteRun(runID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.respondError(w, http.StatusNotFound, "analysis not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, "failed to delete analysis")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"deleted": runID})
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "use GET or DELETE")
	}
}

// handleDegrees re-annotates a stored run's notes against a requested root.
func (s *Server) handleDegrees(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	rootName := r.URL.Query().Get("root")
	if rootName == "" {
		s.respondError(w, http.StatusBadRequest, "missing 'root' query parameter")
		return
	}
	root, err := theory.ParsePitchClass(rootName)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.service.GetRun(runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.respondError(w, http.StatusNotFound, "analysis not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to fetch analysis")
		return
	}

	var notes []theory.AbsoluteNote
	for _, name := range strings.Fields(run.DetectedNotes) {
		n, err := theory.ParseAbsoluteNote(name)
		if err != nil {
			s.log.Warnf("Skipping malformed stored note %q: %v", name, err)
			continue
		}
		notes = append(notes, n)
	}

	var degrees []DegreeDTO
	for _, a := range s.service.Annotate(notes, root) {
		degrees = append(degrees, DegreeDTO{Note: a.Name, Octave: a.Octave, Degree: a.Degree})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"root":    root.String(),
		"degrees": degrees,
	})
}
