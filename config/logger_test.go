package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingPrepare_FileLogger(t *testing.T) {
	tmpDir := t.TempDir()
	console, err := os.Create(filepath.Join(tmpDir, "console.txt"))
	if err != nil {
		t.Fatalf("create console file: %v", err)
	}
	defer console.Close()

	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "normal"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: filepath.Join(tmpDir, "run.log"), Mode: "overwrite"},
	}
	log, err := conf.prepare(console, nil)
	if err != nil {
		t.Fatalf("prepare() error = %v", err)
	}
	log.Debug("debug entry")
	log.Info("info entry")
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "debug entry") || !strings.Contains(string(data), "info entry") {
		t.Errorf("file log is missing entries:\n%s", data)
	}

	out, err := os.ReadFile(console.Name())
	if err != nil {
		t.Fatalf("read console: %v", err)
	}
	if strings.Contains(string(out), "debug entry") {
		t.Error("normal console level must not output debug entries")
	}
	if !strings.Contains(string(out), "info entry") {
		t.Errorf("console output is missing info entry:\n%s", out)
	}
}

func TestLoggingPrepare_ConsoleNone(t *testing.T) {
	console, err := os.Create(filepath.Join(t.TempDir(), "console.txt"))
	if err != nil {
		t.Fatalf("create console file: %v", err)
	}
	defer console.Close()

	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none"},
	}
	log, err := conf.prepare(console, nil)
	if err != nil {
		t.Fatalf("prepare() error = %v", err)
	}
	log.Error("should not be visible")
	_ = log.Sync()

	out, err := os.ReadFile(console.Name())
	if err != nil {
		t.Fatalf("read console: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no console output, got:\n%s", out)
	}
}
