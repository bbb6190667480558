package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/NiheiRyunosuke/MelodyAnalyzer4Jazz/internal/analyzer"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	instrument     string
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("MELODY_DB_PATH", "melodyanalyzer.sqlite3"), "Path to SQLite history database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("MELODY_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 22050, "Audio sample rate")
	flag.StringVar(&instrument, "instrument", analyzer.InstrumentGuitar, "Instrument preset: guitar or voice")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := analyzer.NewService(
		analyzer.WithDBPath(dbPath),
		analyzer.WithTempDir(tempDir),
		analyzer.WithSampleRate(sampleRate),
		analyzer.WithInstrument(instrument),
	)
	if err != nil {
		log.Fatalf("Failed to create analyzer service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
