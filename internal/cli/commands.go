package cli

import (
	"fmt"
	"net"

	"github.com/urfave/cli/v2"
	"github.com/vk/jobgraph/internal/app"
)

func (r *runner) runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run jobs in this process",
		ArgsUsage: "[FILE|DIR]...",
		Description: `Loads every job found in the given files or directories (the jobs
directory when none are given) and runs them one after another.

Example:
  jobgraph run --mode sequential jobs/diamond.hcl`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Execution mode: 'sequential' or 'parallel'",
				Value:   app.ModeParallel,
			},
			&cli.StringFlag{Name: "jobs", Usage: "Directory searched when no paths are given"},
		},
		Action: func(c *cli.Context) error {
			a, err := r.newApp(c)
			if err != nil {
				return err
			}
			paths := c.Args().Slice()
			if len(paths) == 0 {
				paths = []string{a.Config().JobsDir}
			}
			results, err := a.Run(c.Context, c.String("mode"), paths...)
			if err != nil {
				return err
			}
			return r.printJSON(results)
		},
	}
}

func (r *runner) coordinatorCommand() *cli.Command {
	return &cli.Command{
		Name:  "coordinator",
		Usage: "Serve workers and job submissions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "HTTP listen address (default: :7070)"},
			&cli.StringFlag{Name: "jobs", Usage: "Directory of job files (default: jobs)"},
			&cli.StringFlag{Name: "policy", Usage: "Worker selection policy: 'equity' or 'first-fit'"},
			&cli.IntFlag{Name: "max-capacity", Usage: "Upper bound of randomly assigned worker capacities (default: 2)"},
		},
		Action: func(c *cli.Context) error {
			a, err := r.newApp(c)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", a.Config().Listen)
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}
			return a.ServeCoordinator(c.Context, ln)
		},
	}
}

func (r *runner) workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Execute tasks sent by a coordinator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "coordinator", Aliases: []string{"c"}, Usage: "Coordinator URL (default: http://localhost:7070)"},
			&cli.StringFlag{Name: "jobs", Usage: "Directory of job files (default: jobs)"},
			&cli.IntFlag{Name: "capacity", Usage: "Concurrent task slots; 0 lets the coordinator choose"},
			&cli.DurationFlag{Name: "task-delay", Usage: "Sleep before every task, to observe load balancing"},
		},
		Action: func(c *cli.Context) error {
			a, err := r.newApp(c)
			if err != nil {
				return err
			}
			return a.ServeWorker(c.Context, nil)
		},
	}
}

func (r *runner) submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Ask a coordinator to run a job",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "coordinator", Aliases: []string{"c"}, Usage: "Coordinator URL (default: http://localhost:7070)"},
			&cli.StringFlag{Name: "job", Aliases: []string{"j"}, Usage: "Name of the job", Required: true},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "'distributed' or 'central'", Value: "distributed"},
		},
		Action: func(c *cli.Context) error {
			a, err := r.newApp(c)
			if err != nil {
				return err
			}
			results, err := a.Submit(c.Context, c.String("job"), c.String("mode"))
			if err != nil {
				return err
			}
			return r.printJSON(results)
		},
	}
}
