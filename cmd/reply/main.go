// Package main provides a CLI for generating a reply from an HTML file.
// Usage: reply [-file page.html] [-dry-run] [-normalizer goquery|html2text] [-output text|json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"reply-relay/internal/config"
	"reply-relay/internal/domain/entity"
	"reply-relay/internal/infra/completion"
	"reply-relay/internal/infra/normalizer"
	"reply-relay/internal/infra/paramstore"
	"reply-relay/internal/observability/logging"
	replyUC "reply-relay/internal/usecase/reply"
)

// ReplyOutput is the JSON output format.
type ReplyOutput struct {
	Response string `json:"response"`
}

// completerFactory builds the completion client; replaced in tests.
var completerFactory = completion.New

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("reply", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		file         string
		dryRun       bool
		normKind     string
		outputFormat string
	)
	fs.StringVar(&file, "file", "", "HTML file to read (default: stdin)")
	fs.BoolVar(&dryRun, "dry-run", false, "Print the normalized text without calling the completion service")
	fs.StringVar(&normKind, "normalizer", "", "Normalizer: goquery or html2text (default: NORMALIZER or goquery)")
	fs.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintf(stderr, "Error: Invalid output format '%s' (must be 'text' or 'json')\n", outputFormat)
		return 2
	}

	html, err := readInput(file, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := logging.New(stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	ctx = logging.WithLogger(ctx, logger)

	if dryRun {
		norm, err := normalizer.New(normKind)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintln(stdout, norm.Normalize(html))
		return 0
	}

	cfg, err := config.LoadRelayConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		fmt.Fprintf(stderr, "Error: Failed to load configuration: %v\n", err)
		return 1
	}
	if normKind != "" {
		cfg.Normalizer = normKind
	}

	svc, err := buildService(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	reply, err := svc.Generate(ctx, entity.HTMLFragment(html))
	if errors.Is(err, entity.ErrEmptyHTML) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	rendered := entity.Render(reply, err)

	if outputFormat == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ReplyOutput{Response: rendered}); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintln(stdout, rendered)
	}

	if err != nil {
		return 1
	}
	return 0
}

func readInput(file string, stdin io.Reader) (string, error) {
	if file == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(b), nil
}

func buildService(ctx context.Context, cfg *config.RelayConfig) (replyUC.Service, error) {
	norm, err := normalizer.New(cfg.Normalizer)
	if err != nil {
		return replyUC.Service{}, err
	}

	if cfg.Completion.APIKey == "" {
		store, err := paramstore.NewFromEnvironment(ctx)
		if err != nil {
			return replyUC.Service{}, err
		}
		key, err := paramstore.ResolveAPIKey(ctx, store, cfg.Completion.APIKey, cfg.Completion.APIKeyParam)
		if err != nil {
			return replyUC.Service{}, fmt.Errorf("failed to resolve api key: %w", err)
		}
		cfg.Completion.APIKey = key
	}

	completer, err := completerFactory(cfg.Completion)
	if err != nil {
		return replyUC.Service{}, fmt.Errorf("failed to create completion client: %w", err)
	}

	return replyUC.Service{Normalizer: norm, Completer: completer}, nil
}
