package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := New(Config{Level: level, Colorize: false, Output: &buf})
	return log, &buf
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newTestLogger(WARN)

	log.Debugf("debug message")
	log.Infof("info message")
	log.Warnf("warn message")
	log.Errorf("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN leaked through: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN/ERROR messages missing: %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	log, buf := newTestLogger(ERROR)

	log.Infof("dropped")
	log.SetLevel(DEBUG)
	log.Debugf("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("message below level leaked: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("message after SetLevel missing: %q", out)
	}
}

func TestFormatIncludesLevelTag(t *testing.T) {
	log, buf := newTestLogger(DEBUG)

	log.Warnf("watch out: %d", 42)

	out := buf.String()
	if !strings.Contains(out, "[WARN]") {
		t.Errorf("missing level tag: %q", out)
	}
	if !strings.Contains(out, "watch out: 42") {
		t.Errorf("missing formatted message: %q", out)
	}
}

func TestPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: DEBUG, Colorize: false, Prefix: "[cli]", Output: &buf})

	log.Infof("hello")
	if !strings.Contains(buf.String(), "[cli] hello") {
		t.Errorf("prefix missing: %q", buf.String())
	}
}

func TestColorizeToggle(t *testing.T) {
	log, buf := newTestLogger(DEBUG)

	log.Infof("plain")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("ANSI codes with colorize off: %q", buf.String())
	}

	buf.Reset()
	log.SetColorize(true)
	log.Infof("colored")
	if !strings.Contains(buf.String(), "\033[34m") {
		t.Errorf("INFO not colored blue: %q", buf.String())
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{FATAL, "FATAL"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
