package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/LemoMew/FractalPendulum/internal/config"
)

type syncBuffer struct{ bytes.Buffer }

func (b *syncBuffer) Sync() error { return nil }

func TestInitializeConsole(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	buf := &syncBuffer{}
	cfg := config.DefaultLoggerConfig()
	cfg.Level = "debug"
	Initialize(cfg, buf)

	GetLogger().Info("frame rendered", zap.Int("segments", 8191))
	Sync()

	out := buf.String()
	for _, want := range []string{"INFO", ansiColors["green"], "frame rendered", "fractalpendulum.", "8191"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLevelColors(t *testing.T) {
	tests := []struct {
		name   string
		colors config.ColorConfig
		log    func(*zap.Logger)
		want   string
	}{
		{"warn yellow", config.ColorConfig{Warn: "yellow"}, func(l *zap.Logger) { l.Warn("halted") }, ansiColors["yellow"] + "WARN" + colorReset},
		{"error red", config.ColorConfig{Error: "red"}, func(l *zap.Logger) { l.Error("diverged") }, ansiColors["red"] + "ERROR" + colorReset},
		{"debug cyan", config.ColorConfig{Debug: "cyan"}, func(l *zap.Logger) { l.Debug("step") }, ansiColors["cyan"] + "DEBUG" + colorReset},
		{"unknown name is plain", config.ColorConfig{Info: "purple"}, func(l *zap.Logger) { l.Info("frame") }, "\tINFO\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetForTest()
			defer ResetForTest()

			buf := &syncBuffer{}
			Initialize(config.LoggerConfig{Level: "debug", Format: "console", Colors: tt.colors}, buf)
			tt.log(GetLogger())

			if out := buf.String(); !strings.Contains(out, tt.want) {
				t.Errorf("output %q missing %q", out, tt.want)
			}
		})
	}
}

func TestInitializeJSON(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "jsontest"}, buf)

	GetLogger().Warn("simulation halted", zap.String("cause", "nan"))
	Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" || entry["logger"] != "jsontest" || entry["cause"] != "nan" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, buf)

	GetLogger().Info("hidden")
	GetLogger().Error("shown")
	Sync()

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogFile(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	path := filepath.Join(t.TempDir(), "run.log")
	Initialize(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&syncBuffer{}))

	GetLogger().Error("goes to file")
	Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "goes to file") {
		t.Errorf("log file missing message: %q", content)
	}
}

func TestInitializeOnce(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"}, &syncBuffer{})
	first := GetLogger()
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "second"}, &syncBuffer{})

	if GetLogger() != first {
		t.Error("second Initialize replaced the logger")
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil")
	}
}
