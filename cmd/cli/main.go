package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/analyzer"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/extract"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/theory"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/pkg/logger"
	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/pkg/utils"
)

// Global flags
var (
	dbPath     string
	tempDir    string
	sampleRate int
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("MELODY_DB_PATH", "melodyanalyzer.sqlite3"), "Path to the SQLite history database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("MELODY_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", 22050, "Audio sample rate for analysis")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("Executing command: %s", command)

	switch command {
	case "analyze":
		handleAnalyze()
	case "scales":
		handleScales()
	case "history":
		handleHistory()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
  __  __      _           _         _                _
 |  \/  | ___| | ___   __| |_   _  / \   _ __   __ _| |_   _ _______ _ __
 | |\/| |/ _ \ |/ _ \ / _' | | | |/ _ \ | '_ \ / _' | | | | |_  / _ \ '__|
 | |  | |  __/ | (_) | (_| | |_| / ___ \| | | | (_| | | |_| |/ /  __/ |
 |_|  |_|\___|_|\___/ \__,_|\__, /_/   \_\_| |_|\__,_|_|\__, /___\___|_|
                            |___/                       |___/
              Jazz Scale Analyzer for Recorded Phrases
`
	fmt.Println(banner)
}

func handleAnalyze() {
	log := logger.GetLogger()

	// Separate the audio file path from flags.
	args := os.Args[2:]
	var audioPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && audioPath == "" {
			audioPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	rootName := analyzeCmd.String("root", "", "Restrict results to scales with this root (e.g. C, F#)")
	instrument := analyzeCmd.String("instrument", analyzer.InstrumentGuitar, "Instrument preset: guitar or voice")
	threshold := analyzeCmd.Float64("threshold", -1, "Voicing confidence threshold override (0-1)")
	support := analyzeCmd.Float64("support", -1, "Minimum support fraction override (0-1)")
	top := analyzeCmd.Int("top", 15, "Maximum number of scales to display")
	floor := analyzeCmd.Float64("floor", 0.5, "Minimum match ratio to display")
	youtubeURL := analyzeCmd.String("youtube-url", "", "YouTube URL to download and analyze (alternative to audio file)")
	analyzeCmd.Parse(flagArgs)

	if *youtubeURL != "" && audioPath != "" {
		fmt.Println("Error: cannot specify both an audio file and --youtube-url")
		os.Exit(1)
	}
	if *youtubeURL == "" && audioPath == "" {
		fmt.Println("Error: audio file path or --youtube-url required")
		fmt.Println("Usage: melodyanalyzer analyze <audio_file> [--root C] [--instrument guitar|voice]")
		fmt.Println("   OR: melodyanalyzer analyze --youtube-url <url> [--root C]")
		os.Exit(1)
	}

	var rootFilter *theory.PitchClass
	if *rootName != "" {
		pc, err := theory.ParsePitchClass(*rootName)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		rootFilter = &pc
	}

	opts := []analyzer.Option{
		analyzer.WithDBPath(dbPath),
		analyzer.WithTempDir(tempDir),
		analyzer.WithSampleRate(sampleRate),
		analyzer.WithInstrument(*instrument),
		analyzer.WithMaxResults(*top),
		analyzer.WithScoreFloor(*floor),
	}
	if *threshold >= 0 {
		opts = append(opts, analyzer.WithConfidenceThreshold(*threshold))
	}
	if *support >= 0 {
		opts = append(opts, analyzer.WithMinSupportFraction(*support))
	}

	svc, err := analyzer.NewService(opts...)
	if err != nil {
		fmt.Printf("Failed to create analyzer: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("Analyzing phrase...")
	var result *analyzer.Result
	if *youtubeURL != "" {
		if !utils.IsYouTubeURL(*youtubeURL) {
			fmt.Printf("Error: %q does not look like a YouTube URL\n", *youtubeURL)
			os.Exit(1)
		}
		result, err = svc.AnalyzeYouTube(ctx, *youtubeURL)
	} else {
		result, err = svc.Analyze(ctx, audioPath)
	}
	if err != nil {
		if errors.Is(err, extract.ErrNoPitchDetected) {
			fmt.Println("\nCould not detect a clear melody in the recording.")
			fmt.Println("Try lowering --threshold or re-capturing the phrase.")
			os.Exit(1)
		}
		fmt.Printf("\nAnalysis failed: %v\n", err)
		log.Errorf("Analyze failed: %v", err)
		os.Exit(1)
	}

	printResult(svc, result, rootFilter)
}

func printResult(svc *analyzer.Service, result *analyzer.Result, rootFilter *theory.PitchClass) {
	fmt.Printf("\nDetected notes: %s\n", strings.Join(result.NoteNames, ", "))

	scales := svc.FilterByRoot(result.Scales, rootFilter)
	if rootFilter != nil {
		fmt.Printf("\nMatching scales rooted at %s:\n\n", rootFilter)
	} else {
		fmt.Println("\nMatching scales:")
		fmt.Println()
	}

	if len(scales) == 0 {
		fmt.Println("  No sufficiently good match.")
	}
	for _, s := range scales {
		fmt.Printf("%3d. %-35s | match: %3.0f%%\n", s.Rank, s.Scale.Name(), s.Score*100)
	}

	if rootFilter != nil {
		fmt.Printf("\nDegrees relative to %s:\n\n", rootFilter)
		for _, a := range svc.Annotate(result.Notes, *rootFilter) {
			fmt.Printf("  %s%d: %s\n", a.Name, a.Octave, a.Degree)
		}
	}

	if result.RunID != "" {
		fmt.Printf("\nSaved as run %s\n", result.RunID)
	}
}

func handleScales() {
	scalesCmd := flag.NewFlagSet("scales", flag.ExitOnError)
	rootName := scalesCmd.String("root", "", "List only scales with this root")
	scalesCmd.Parse(os.Args[2:])

	catalog := theory.MustBuildCatalog()

	var rootFilter *theory.PitchClass
	if *rootName != "" {
		pc, err := theory.ParsePitchClass(*rootName)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		rootFilter = &pc
	}

	count := 0
	for _, def := range catalog.Definitions() {
		if rootFilter != nil && def.Key.Root != *rootFilter {
			continue
		}
		fmt.Printf("%-35s %s\n", def.Name(), strings.Join(def.Set.Names(), " "))
		count++
	}
	fmt.Printf("\n%d scales\n", count)
}

func handleHistory() {
	log := logger.GetLogger()

	svc, err := newService()
	if err != nil {
		fmt.Printf("Failed to create analyzer: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	runs, err := svc.ListRuns()
	if err != nil {
		fmt.Printf("Failed to list runs: %v\n", err)
		log.Errorf("ListRuns failed: %v", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No analysis runs recorded yet")
		return
	}

	fmt.Printf("%d analysis run(s):\n\n", len(runs))
	for i, run := range runs {
		fmt.Printf("%d. %s\n", i+1, run.Source)
		fmt.Printf("   ID: %s | %s\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("   Notes: %s\n", run.PitchClasses)
		if run.TopScale != "" {
			fmt.Printf("   Best match: %s (%.0f%%)\n", run.TopScale, run.TopScore*100)
		}
		fmt.Println()
	}
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: melodyanalyzer delete <run_id>")
		os.Exit(1)
	}
	runID := os.Args[2]

	svc, err := newService()
	if err != nil {
		fmt.Printf("Failed to create analyzer: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	run, err := svc.GetRun(runID)
	if err != nil {
		fmt.Printf("Run not found: %s\n", runID)
		log.Warnf("Run %s not found: %v", runID, err)
		os.Exit(1)
	}

	if err := svc.DeleteRun(runID); err != nil {
		fmt.Printf("Failed to delete run: %v\n", err)
		log.Errorf("DeleteRun failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted run %s (%s)\n", run.ID, run.Source)
}

func newService() (*analyzer.Service, error) {
	return analyzer.NewService(
		analyzer.WithDBPath(dbPath),
		analyzer.WithTempDir(tempDir),
		analyzer.WithSampleRate(sampleRate),
	)
}

func printUsage() {
	fmt.Println("MelodyAnalyzer4Jazz - which scale is that phrase built on?")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite history database (env: MELODY_DB_PATH)")
	fmt.Println("  --temp <dir>       Temporary directory for audio conversion (env: MELODY_TEMP_DIR)")
	fmt.Println("  --rate <hz>        Audio sample rate (default: 22050)")
	fmt.Println("\nUsage:")
	fmt.Println("  melodyanalyzer analyze <audio_file> [--root C] [--instrument guitar|voice] [--threshold 0.5] [--support 0.02] [--top 15] [--floor 0.5]")
	fmt.Println("  melodyanalyzer analyze --youtube-url <url> [--root C]")
	fmt.Println("  melodyanalyzer scales [--root C]")
	fmt.Println("  melodyanalyzer history")
	fmt.Println("  melodyanalyzer delete <run_id>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Analyze a recorded solo and see every candidate scale")
	fmt.Println("  melodyanalyzer analyze solo.wav")
	fmt.Println()
	fmt.Println("  # Compare the phrase against C-rooted scales, with degree labels")
	fmt.Println("  melodyanalyzer analyze solo.wav --root C")
	fmt.Println()
	fmt.Println("  # Vocal phrase with the stricter voice preset")
	fmt.Println("  melodyanalyzer analyze take3.mp3 --instrument voice")
}
