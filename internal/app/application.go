package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/cli"
	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/tracker"
)

// SuiteRunner is what the Application needs from the orchestrator; tests
// provide a stub.
type SuiteRunner interface {
	RunSuite(ctx context.Context, name string, out io.Writer, sink check.Sink) (*RunResult, error)
	RunAll(ctx context.Context, out io.Writer, sink check.Sink) ([]*RunResult, bool, error)
	Tracker() tracker.Tracker
	Close() error
}

// ErrNoHistory is returned by the history command without a history file.
var ErrNoHistory = errors.New("history command needs -history FILE")

// Application is the global runtime state container.
// It holds config, parsed CLI args and the core services that are shared
// across modules (orchestrator, logger).
type Application struct {
	Config *Config
	Args   *cli.CLIArgs

	Logger logging.Logger
	Orch   SuiteRunner
}

// NewApplication constructs an Application from the provided parts.
func NewApplication(cfg *Config, args *cli.CLIArgs, logger logging.Logger, orch SuiteRunner) *Application {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Application{
		Config: cfg,
		Args:   args,
		Logger: logger,
		Orch:   orch,
	}
}

// Start logs the effective configuration.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application starting",
		logging.Field{Key: "command", Value: a.Args.Command},
		logging.Field{Key: "base_url", Value: a.Config.BaseURL},
		logging.Field{Key: "backend", Value: string(a.Config.WebClientCfg.Client)})
	return nil
}

// Execute runs the suite commands and the history listing, writing to out.
// It returns whether every suite succeeded.
func (a *Application) Execute(ctx context.Context, out io.Writer) (bool, error) {
	if a == nil {
		return false, errors.New("application is nil")
	}

	switch a.Args.Command {
	case "all":
		_, ok, err := a.Orch.RunAll(ctx, out, nil)
		return ok, err
	case "history":
		if a.Config.TrackerCfg.StoragePath == "" {
			return false, ErrNoHistory
		}
		return true, a.printHistory(ctx, out)
	case "serve":
		return false, fmt.Errorf("serve is handled by the server package")
	default:
		res, err := a.Orch.RunSuite(ctx, a.Args.Command, out, nil)
		if err != nil {
			return false, err
		}
		return res.OK, nil
	}
}

func (a *Application) printHistory(ctx context.Context, out io.Writer) error {
	tr := a.Orch.Tracker()
	runs, err := tr.ListRuns(ctx, a.Args.Limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	fmt.Fprintf(out, "📜 RUN HISTORY (%d runs)\n", len(runs))
	for _, run := range runs {
		mark := "✅"
		if !run.OK {
			mark = "❌"
		}
		fmt.Fprintf(out, "%s %s %-8s %d/%d %s %s\n",
			mark, run.StartedAt.Format(time.DateTime), run.Suite,
			run.TestsPassed, run.TestsRun, run.BaseURL, run.ID)

		drift, err := tr.PageDrift(ctx, run.ID)
		if err != nil {
			a.Logger.Warn("computing page drift", logging.Field{Key: "run_id", Value: run.ID}, logging.Field{Key: "error", Value: err})
			continue
		}
		switch {
		case run.PageHash == "":
			fmt.Fprintln(out, "   page: not loaded")
		case drift.BaseRunID == "":
			fmt.Fprintln(out, "   page: first capture")
		case drift.Changed():
			fmt.Fprintf(out, "   page: changed since %s (+%d -%d chars)\n", drift.BaseRunID, drift.Added, drift.Removed)
		default:
			fmt.Fprintf(out, "   page: unchanged since %s\n", drift.BaseRunID)
		}
	}
	return nil
}

// Shutdown releases the orchestrator and its components.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	if a.Orch != nil {
		if err := a.Orch.Close(); err != nil {
			a.Logger.Warn("orchestrator close returned error", logging.Field{Key: "error", Value: err})
			return err
		}
	}
	return nil
}
