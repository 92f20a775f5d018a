package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
	log "github.com/sirupsen/logrus"
)

func TestLineFormatter(t *testing.T) {
	entry := &log.Entry{
		Logger:  log.New(),
		Time:    time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Level:   log.WarnLevel,
		Message: "Embedding provider unavailable\n",
		Data:    log.Fields{"provider": "ollama", "promise_id": "p-1"},
	}
	out, err := (&LineFormatter{}).Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	want := "[2026-10-15 09:30:00] [warn ] Embedding provider unavailable | promise_id=p-1 provider=ollama\n"
	if string(out) != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}
}

func TestSetupRejectsBadConfig(t *testing.T) {
	if err := Setup(model.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if err := Setup(model.LoggingConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "politikcred.log")
	if err := Setup(model.LoggingConfig{Level: "debug", Format: "json", File: path, MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	log.WithField("official_id", "off-1").Info("Scoring run complete")
	if err := Close(); err != nil {
		t.Fatal(err)
	}
	defer Setup(model.DefaultConfig().Logging)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"official_id":"off-1"`) {
		t.Errorf("log file missing structured field: %s", data)
	}
}
