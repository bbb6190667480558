package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/pkg/utils"
)

// YTMetadata is the subset of yt-dlp video metadata the analyzer keeps.
type YTMetadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Track    string  `json:"track"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

func pickArtist(meta YTMetadata) string {
	if strings.TrimSpace(meta.Artist) != "" {
		return meta.Artist
	}
	if strings.TrimSpace(meta.Channel) != "" {
		return meta.Channel
	}
	if strings.TrimSpace(meta.Uploader) != "" {
		return meta.Uploader
	}
	return "Unknown Artist"
}

// DownloadYouTubeAudio fetches the best audio stream of a YouTube video into
// outputDir and returns the downloaded path plus video metadata. The caller
// still runs the result through ConvertToMonoWAV before analysis.
func DownloadYouTubeAudio(ctx context.Context, youtubeURL string, outputDir string) (string, *YTMetadata, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return "", nil, fmt.Errorf("yt-dlp not available: %w", err)
	}

	// Step 1: metadata only.
	metaRes, err := ytdlp.New().
		NoWarnings().
		NoPlaylist().
		SkipDownload().
		DumpSingleJSON().
		Run(ctx, youtubeURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("yt-dlp metadata extraction failed: %w", err)
	}

	var meta YTMetadata
	if err := json.Unmarshal([]byte(metaRes.Stdout), &meta); err != nil {
		return "", nil, fmt.Errorf("failed to parse yt-dlp JSON: %w", err)
	}
	if strings.TrimSpace(meta.ID) == "" {
		return "", nil, fmt.Errorf("missing video ID in yt-dlp output")
	}
	if strings.TrimSpace(meta.Title) == "" {
		return "", nil, fmt.Errorf("missing title in yt-dlp output")
	}
	meta.Artist = pickArtist(meta)

	// Step 2: download the best audio stream.
	outputTemplate := filepath.Join(outputDir, fmt.Sprintf("%s.%%(ext)s", meta.ID))
	_, err = ytdlp.New().
		NoWarnings().
		NoPlaylist().
		Format("ba").
		Output(outputTemplate).
		Run(ctx, youtubeURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("yt-dlp download failed: %w", err)
	}

	// Step 3: locate the downloaded file; yt-dlp picks the container.
	audioExtensions := []string{".m4a", ".webm", ".opus", ".mp3", ".aac", ".ogg"}
	for _, ext := range audioExtensions {
		candidate := filepath.Join(outputDir, meta.ID+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, &meta, nil
		}
	}

	return "", nil, fmt.Errorf("downloaded audio file not found for video %s (checked extensions: %v)", meta.ID, audioExtensions)
}
