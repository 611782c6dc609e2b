// Command reviewkit serves and invokes the suggest_change review tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/reviewkit/config"
	"github.com/tailored-agentic-units/reviewkit/observability"
	"github.com/tailored-agentic-units/reviewkit/platform"
)

var version = "dev"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitToolFailure  = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error   { return &exitError{code: ExitUsageError, err: err} }
func runtimeErr(err error) error { return &exitError{code: ExitRuntimeError, err: err} }

type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile   string
	envFile      string
	platform     string
	observerFlag string
	verbose      bool

	cfg      *config.Config
	logger   *slog.Logger
	observer observability.Observer
	exitCode int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return ExitUsageError
	}
	return a.exitCode
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "reviewkit",
		Short:             "Post code-review suggestions from an agent tool call",
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to a JSON or TOML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVarP(&a.platform, "platform", "p", "",
		fmt.Sprintf("platform backend, one of %s (overrides config)", strings.Join(platform.Names(), ", ")))
	root.PersistentFlags().StringVar(&a.observerFlag, "observer", "",
		fmt.Sprintf("comma-separated observers from %s (overrides config)", strings.Join(observability.Names(), ", ")))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging to stderr")

	root.AddCommand(a.invokeCmd(), a.toolsCmd(), a.serveCmd(), a.versionCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile, a.envFile)
	if err != nil {
		return runtimeErr(fmt.Errorf("failed to load config: %w", err))
	}
	if a.platform != "" {
		cfg.Platform = a.platform
	}
	if a.observerFlag != "" {
		cfg.Observer = a.observerFlag
	}

	level := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		a.logger = slog.New(slog.NewJSONHandler(a.stderr, opts))
	} else {
		a.logger = slog.New(slog.NewTextHandler(a.stderr, opts))
	}

	obs, err := newObserver(cfg.ObserverNames(), a.logger)
	if err != nil {
		return usageErr(err)
	}

	a.cfg = cfg
	a.observer = obs
	return nil
}

func newObserver(names []string, logger *slog.Logger) (observability.Observer, error) {
	observers := make([]observability.Observer, 0, len(names))
	for _, name := range names {
		obs, err := observability.New(name, logger)
		if err != nil {
			return nil, err
		}
		observers = append(observers, obs)
	}

	switch len(observers) {
	case 0:
		return observability.NoOpObserver{}, nil
	case 1:
		return observers[0], nil
	default:
		return observability.NewMultiObserver(observers...), nil
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print reviewkit version",
		// version needs no config
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "reviewkit version %s\n", version)
		},
	}
}
