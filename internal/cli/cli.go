package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/vk/jobgraph/internal/app"
	"github.com/vk/jobgraph/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Run parses args (without the program name) and executes the selected
// command. Results are written to outW and logs to errW.
func Run(ctx context.Context, args []string, outW, errW io.Writer) error {
	a := New(outW, errW)
	return a.RunContext(ctx, append([]string{a.Name}, args...))
}

// New builds the jobgraph command tree.
func New(outW, errW io.Writer) *cli.App {
	r := &runner{outW: outW, errW: errW}
	return &cli.App{
		Name:  "jobgraph",
		Usage: "Run DAGs of tasks locally or across a fleet of workers",
		Description: `Jobs are declared in HCL files as task blocks whose parameters are bound
either to the job context or to the result of another task.

Every option may also be set through a JOBGRAPH_* environment variable,
e.g. JOBGRAPH_LOG_LEVEL or JOBGRAPH_COORDINATOR_URL. Flags take precedence.`,
		Writer:          outW,
		ErrWriter:       errW,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "Logging level: 'debug', 'info', 'warn' or 'error' (default: info)"},
			&cli.StringFlag{Name: "log-format", Usage: "Log output format: 'text' or 'json' (default: text)"},
		},
		Commands: []*cli.Command{
			r.runCommand(),
			r.coordinatorCommand(),
			r.workerCommand(),
			r.submitCommand(),
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return usageError(err)
		},
		// Errors are returned to the caller, which owns the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

type runner struct {
	outW io.Writer
	errW io.Writer
}

// configure loads the environment configuration, applies the flags that
// were set and validates the result.
func (r *runner) configure(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, usageError(err)
	}

	strs := map[string]*string{
		"log-level":   &cfg.LogLevel,
		"log-format":  &cfg.LogFormat,
		"listen":      &cfg.Listen,
		"coordinator": &cfg.CoordinatorURL,
		"policy":      &cfg.Policy,
		"jobs":        &cfg.JobsDir,
	}
	for name, dst := range strs {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	ints := map[string]*int{
		"capacity":     &cfg.WorkerCapacity,
		"max-capacity": &cfg.MaxCapacity,
	}
	for name, dst := range ints {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	if c.IsSet("task-delay") {
		cfg.TaskDelay = c.Duration("task-delay")
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// newApp configures and constructs the application. A panic during
// construction is reported as an error.
func (r *runner) newApp(c *cli.Context) (a *app.App, err error) {
	cfg, err := r.configure(c)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("application startup panicked: %v", rec)
		}
	}()
	return app.NewApp(r.errW, cfg), nil
}

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.outW)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
