package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/leads-generator/enricher/internal/app"
	"github.com/octobees/leads-generator/enricher/internal/auth"
	"github.com/octobees/leads-generator/enricher/internal/config"
	"github.com/octobees/leads-generator/enricher/internal/dto"
	"github.com/octobees/leads-generator/enricher/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "enrich":
		return runEnrich(ctx, args[1:], stdout, stderr)
	case "keywords":
		return runKeywords(ctx, args[1:], stdout, stderr)
	case "token":
		return runToken(args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func runEnrich(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}

	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var fastMode bool
	var fields string
	var headless bool
	fs.BoolVar(&fastMode, "fast", cfg.FastMode, "Skip slow retries and fallbacks (env: FAST_MODE)")
	fs.StringVar(&fields, "fields", "", "Comma separated fields to extract, empty for all")
	fs.BoolVar(&headless, "headless", cfg.Browser.Enabled, "Allow headless browser tiers (env: ENABLE_HEADLESS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	company := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if company == "" {
		_, _ = fmt.Fprintln(stderr, "enrich requires a company name or url")
		return 2
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.SetOutput(stderr)
	components := app.New(cfg, log, app.Options{DisableHeadless: !headless})

	result, err := components.Service.Enrich(ctx, dto.EnrichRequest{
		Company:         company,
		FastMode:        fastMode,
		FieldsToExtract: splitFields(fields),
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "enrich failed: %s\n", err)
		return 1
	}
	return writeJSON(stdout, stderr, result)
}

func runKeywords(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}

	fs := flag.NewFlagSet("keywords", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintln(stderr, "keywords requires exactly one url")
		return 2
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.SetOutput(stderr)
	components := app.New(cfg, log, app.Options{DisableHeadless: true})

	keywords, err := components.Service.Keywords(ctx, fs.Arg(0))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "keywords failed: %s\n", err)
		return 1
	}
	return writeJSON(stdout, stderr, keywords)
}

func runToken(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var subject string
	var scopes string
	fs.StringVar(&subject, "subject", "", "Client name stored in the token subject")
	fs.StringVar(&scopes, "scope", "", "Comma separated scopes (bulk, history)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).GenerateToken(subject, splitFields(scopes))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "token error: %s\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, token)
	return 0
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_, _ = fmt.Fprintf(stderr, "write output: %s\n", err)
		return 1
	}
	return 0
}

func splitFields(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Usage:
  enricher enrich [flags] <company name or url>
  enricher keywords <url>
  enricher token -subject NAME [-scope bulk,history]

Commands:
  enrich    Resolve a company website and extract contact details as JSON
  keywords  Print the top keywords of a page as JSON
  token     Issue a signed API token`)
}
