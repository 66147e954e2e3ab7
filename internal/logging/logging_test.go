package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	log := New("debug", "json")
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", log.Formatter)
	}

	log = New("nonsense", "text")
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %s", log.GetLevel())
	}

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.WithField("request_id", "rid-1").Info("hello")
	if !strings.Contains(buf.String(), "request_id=rid-1") {
		t.Fatalf("expected key=value output, got %s", buf.String())
	}
}
