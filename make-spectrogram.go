// Renders spectrogram PNGs for recorded phrases so pitch content can be
// eyeballed before tuning tracker thresholds.
//
// Usage: go run make-spectrogram.go <input_dir> <output_dir>
package main

import (
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/eligwz/spectrogram"
	"github.com/go-audio/wav"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/audio"
)

func main() {
	inputDir := "testdata/phrases"
	outputDir := "testdata/spectrograms"
	if len(os.Args) > 2 {
		inputDir = os.Args[1]
		outputDir = os.Args[2]
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatal(err)
	}

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".wav" {
			return nil
		}

		fmt.Printf("Processing %s...\n", path)

		file, err := os.Open(path)
		if err != nil {
			log.Printf("Error opening %s: %v", path, err)
			return nil
		}
		defer file.Close()

		decoder := wav.NewDecoder(file)
		if !decoder.IsValidFile() {
			log.Printf("Invalid WAV file: %s", path)
			return nil
		}

		buf, err := decoder.FullPCMBuffer()
		if err != nil || buf == nil || len(buf.Data) == 0 {
			log.Printf("Error reading samples from %s: %v", path, err)
			return nil
		}

		bitDepth := int(decoder.BitDepth)
		if bitDepth == 0 {
			bitDepth = buf.SourceBitDepth
		}
		samples, err := audio.NormalizeBuffer(buf, bitDepth)
		if err != nil {
			log.Printf("Error normalizing %s: %v", path, err)
			return nil
		}

		fmt.Printf("Read %d samples at %d Hz\n", len(samples), decoder.SampleRate)

		width := 2048
		height := 512
		img := spectrogram.NewImage128(image.Rect(0, 0, width, height))

		black := spectrogram.ParseColor("000000")
		draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

		// Hamming window, FFT, magnitude, linear scale.
		spectrogram.Drawfft(
			img,
			samples,
			uint32(decoder.SampleRate),
			uint32(height),
			false, // RECTANGLE (use Hamming window)
			false, // DFT (use FFT instead)
			true,  // MAG (magnitude)
			false, // LOG10 (linear scale)
		)

		outputPath := filepath.Join(outputDir, filepath.Base(path)+".png")
		if err := spectrogram.SavePng(img, outputPath); err != nil {
			log.Printf("Error saving PNG for %s: %v", outputPath, err)
			return nil
		}

		fmt.Printf("Saved spectrogram to %s\n", outputPath)
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Done!")
}
