// File: cmd/soapnote/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/iyunix/mediscribe/internal/cli"
	"github.com/iyunix/mediscribe/internal/config"
	"github.com/iyunix/mediscribe/internal/services"
	"github.com/iyunix/mediscribe/internal/services/gemini"
	"github.com/iyunix/mediscribe/internal/services/soapnote"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnvFile()
	code := cli.Execute(ctx, newDeps(afero.NewOsFs()), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newDeps reads the narrative limit on its own because "prompt" runs
// without an API key.
func newDeps(fs afero.Fs) cli.Deps {
	return cli.Deps{
		Fs:                fs,
		NewGenerator:      newGenerator,
		MaxNarrativeBytes: config.MaxNarrativeBytes(),
	}
}

func newGenerator() (cli.NoteGenerator, error) {
	cfg, err := config.FromEnv(os.Getenv("ENV"))
	if err != nil {
		return nil, err
	}

	// Logs go to stderr so stdout stays a clean note.
	logger := services.NewProductionLogger("soapnote-cli", os.Stderr, services.ParseLogLevel(cfg.LogLevel), false)

	client, err := gemini.NewClient(&gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	noteConfig := soapnote.DefaultConfig()
	noteConfig.GenerationTimeout = cfg.GeminiTimeout + 5*time.Second
	svc, err := soapnote.NewService(noteConfig, client, logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
