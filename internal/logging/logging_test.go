package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/rental-projection/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantEnc   string
		wantErr   bool
	}{
		{"defaults", config.LoggingConfig{}, "", zapcore.InfoLevel, "json", false},
		{"configured", config.LoggingConfig{Level: "warn", Format: "console"}, "", zapcore.WarnLevel, "console", false},
		{"override wins", config.LoggingConfig{Level: "error"}, "DEBUG", zapcore.DebugLevel, "json", false},
		{"warning alias", config.LoggingConfig{Level: "warning"}, "", zapcore.WarnLevel, "json", false},
		{"bad level", config.LoggingConfig{Level: "verbose"}, "", 0, "", true},
		{"bad format", config.LoggingConfig{Format: "xml"}, "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Config(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Config() error = %v", err)
			}
			if got.Level.Level() != tt.wantLevel {
				t.Errorf("level = %s, want %s", got.Level.Level(), tt.wantLevel)
			}
			if got.Encoding != tt.wantEnc {
				t.Errorf("encoding = %s, want %s", got.Encoding, tt.wantEnc)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rental.log")
	logger, err := New(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected the log file to contain the entry")
	}
}
