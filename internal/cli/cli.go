package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// Commands accepted as the first positional argument.
var Commands = []string{"backend", "frontend", "report", "all", "serve", "history"}

// ErrUsage wraps every argument error so callers can print usage and exit 2.
var ErrUsage = errors.New("usage")

// CLIArgs are the command-line arguments for one invocation. Zero values mean
// "use the config default".
type CLIArgs struct {
	// Command is one of Commands.
	Command string

	BaseURL      string
	Backend      string
	AppRoot      string
	PageTimeout  time.Duration
	AssetTimeout time.Duration
	RPS          float64
	ShowBrowser  bool

	// DiscoverAssets adds every asset the page references to the backend checks.
	DiscoverAssets bool

	// HistoryPath enables run history in a SQLite file.
	HistoryPath string

	// Limit caps the number of runs the history command lists.
	Limit int

	// Addr is the listen address of the serve command.
	Addr string

	LogLevel string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Flags may appear
// before or after the command. The function does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("stereocheck", flag.ContinueOnError)
	out := &CLIArgs{RawArgs: args}

	fs.StringVar(&out.BaseURL, "base-url", "", "Base URL of the car stereo page (default http://localhost:8080)")
	fs.StringVar(&out.Backend, "backend", "", "Web client: nethttp|fasthttp|chromedp (default nethttp)")
	fs.StringVar(&out.AppRoot, "app-root", "", "Directory the page is served from, for the report's file checks (default /app)")
	fs.DurationVar(&out.PageTimeout, "page-timeout", 0, "Timeout for page loads (default 10s)")
	fs.DurationVar(&out.AssetTimeout, "asset-timeout", 0, "Timeout for asset probes (default 5s)")
	fs.Float64Var(&out.RPS, "rps", 0, "Max requests per second (0 = unlimited)")
	fs.BoolVar(&out.ShowBrowser, "show-browser", false, "Run the chromedp browser with a window")
	fs.BoolVar(&out.DiscoverAssets, "discover-assets", false, "Also probe every asset the page references")
	fs.StringVar(&out.HistoryPath, "history", "", "SQLite file to record runs in")
	fs.IntVar(&out.Limit, "limit", 20, "Runs listed by the history command")
	fs.StringVar(&out.Addr, "addr", "", "Listen address for serve (default :8090)")
	fs.StringVar(&out.LogLevel, "log-level", "", "debug|info|warn|error (default info)")

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return nil, fmt.Errorf("%w: missing command, want one of %s", ErrUsage, strings.Join(Commands, "|"))
	}

	out.Command = strings.ToLower(fs.Arg(0))
	if !isCommand(out.Command) {
		return nil, fmt.Errorf("%w: unknown command %q, want one of %s", ErrUsage, fs.Arg(0), strings.Join(Commands, "|"))
	}

	// Flags after the command.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	if out.RPS < 0 {
		return nil, fmt.Errorf("%w: -rps must not be negative", ErrUsage)
	}
	if out.PageTimeout < 0 || out.AssetTimeout < 0 {
		return nil, fmt.Errorf("%w: timeouts must not be negative", ErrUsage)
	}

	return out, nil
}

func isCommand(s string) bool {
	for _, c := range Commands {
		if c == s {
			return true
		}
	}
	return false
}

// Usage is the help text printed on argument errors.
func Usage() string {
	return `usage: stereocheck [flags] <backend|frontend|report|all|serve|history> [flags]

commands:
  backend    page load, asset availability, HTML and CSS presence
  frontend   layout, controls, display, keyboard, debug, audio and error handling
  report     comprehensive test report
  all        backend, frontend and report in order
  serve      HTTP and WebSocket API for running suites
  history    list recorded runs with page drift (needs -history)

flags:
  -base-url URL         page under test (env STEREOCHECK_BASE_URL)
  -backend NAME         nethttp|fasthttp|chromedp
  -app-root DIR         local application directory for the report
  -page-timeout D       page load timeout
  -asset-timeout D      asset probe timeout
  -rps N                max requests per second
  -show-browser         show the chromedp browser window
  -discover-assets      probe every asset the page references
  -history FILE         record runs in a SQLite file
  -limit N              runs listed by history
  -addr ADDR            listen address for serve
  -log-level LEVEL      debug|info|warn|error (env STEREOCHECK_LOG_LEVEL)
`
}
