// Command stereocheck runs HTTP smoke tests against the 99 CENTS Car Stereo
// Player page and exits 0 when they pass, 1 when they fail.
//
// Usage: go run . [flags] <backend|frontend|report|all|serve|history>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/stereocheck/internal/app"
	"github.com/raysh454/stereocheck/internal/cli"
	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/server"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires the application and returns the process exit code. The report
// goes to stdout and JSON log lines go to stderr.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	cliArgs, err := cli.ParseArgs(args)
	if err != nil {
		return usageError(stderr, err)
	}

	cfg := app.DefaultConfig()
	cfg.ApplyEnv(getenv)
	cfg.ApplyArgs(cliArgs)
	if err := cfg.Validate(); err != nil {
		return usageError(stderr, err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return usageError(stderr, err)
	}
	logger := logging.NewLogger(stderr, "stereocheck", level)

	if cliArgs.Command == "serve" {
		return serve(ctx, cfg, logger)
	}

	comps, err := app.NewComponents(cfg, logger)
	if err != nil {
		logger.Error("creating components", logging.Field{Key: "error", Value: err})
		return exitFail
	}
	orch := app.NewOrchestrator(cfg, comps, logger)

	application := app.NewApplication(cfg, cliArgs, logger, orch)
	if err := application.Start(); err != nil {
		logger.Error("starting application", logging.Field{Key: "error", Value: err})
		_ = application.Shutdown(context.Background())
		return exitFail
	}

	ok, err := application.Execute(ctx, stdout)
	if shutdownErr := application.Shutdown(context.Background()); shutdownErr != nil {
		logger.Warn("shutdown", logging.Field{Key: "error", Value: shutdownErr})
	}

	switch {
	case errors.Is(err, app.ErrNoHistory):
		return usageError(stderr, err)
	case err != nil:
		logger.Error("command failed", logging.Field{Key: "command", Value: cliArgs.Command}, logging.Field{Key: "error", Value: err})
		return exitFail
	case !ok:
		return exitFail
	}
	return exitOK
}

// usageError prints err and the usage text and returns the usage exit code.
func usageError(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "stereocheck: %v\n\n%s", err, cli.Usage())
	return exitUsage
}

func serve(ctx context.Context, cfg *app.Config, logger logging.Logger) int {
	s, err := server.NewServer(server.Config{
		ListenAddr: cfg.ServerAddr,
		AppConfig:  cfg,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("creating server", logging.Field{Key: "error", Value: err})
		return exitFail
	}
	defer s.Close()

	httpServer := s.HTTPServer()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("api server listening", logging.Field{Key: "addr", Value: httpServer.Addr}, logging.Field{Key: "base_url", Value: cfg.BaseURL})
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api server", logging.Field{Key: "error", Value: err})
		return exitFail
	}
	return exitOK
}
