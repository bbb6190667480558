package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/pkg/utils"
)

// DefaultSampleRate is the analysis rate. Pitch tracking needs headroom above
// the ~1 kHz top of the tracked range, and 22050 Hz keeps frames cheap.
const DefaultSampleRate = 22050

type ConvertWAVConfig struct {
	SampleRate int
}

// ConvertToMonoWAV normalizes any ffmpeg-readable input to mono 16-bit PCM
// WAV at the analysis sample rate and saves it under outputDir, preserving
// the base filename.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	// Bound conversion time when the caller set no deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	baseName := filepath.Base(inputPath)
	if ext := filepath.Ext(baseName); ext != ".wav" {
		baseName = strings.TrimSuffix(baseName, ext) + ".wav"
	}
	outputPath := filepath.Join(outputDir, baseName)

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1", // mono
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}
