package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/octobees/leads-generator/enricher/internal/auth"
)

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("expected usage on stderr, got %q", stderr.String())
	}

	stderr.Reset()
	if code := run(context.Background(), []string{"scrape"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown command: scrape") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestRun_Token(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_TTL", "1h")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"token", "-subject", "acme-crm", "-scope", "bulk, history"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, stderr.String())
	}

	claims, err := auth.NewJWTManager("cli-secret", time.Hour).ParseToken(strings.TrimSpace(stdout.String()))
	if err != nil {
		t.Fatalf("expected parseable token: %v", err)
	}
	if claims.Subject != "acme-crm" || !claims.HasScope(auth.ScopeBulk) || !claims.HasScope(auth.ScopeHistory) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRun_TokenRequiresSubject(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"token"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRun_EnrichRequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"enrich", "-fast"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "requires a company") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestSplitFields(t *testing.T) {
	got := splitFields(" email, ,phone,")
	if strings.Join(got, "|") != "email|phone" {
		t.Fatalf("unexpected fields: %v", got)
	}
	if splitFields("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
