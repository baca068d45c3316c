// Command fragrun replays workloads and compares their outputs.
//
//	fragrun migrate [--baseline]
//	fragrun seed-courses [--baseline | --server URL] courses.csv
//	fragrun run [--baseline | --server URL] workload.txt output.txt
//	fragrun compare expected_output.txt output.txt
//
// Without --server, fragrun connects to the fragments directly using the
// same environment settings as fragserver. --baseline targets the single
// unsharded database instead.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamware/gradeshard/internal/api"
	"github.com/dreamware/gradeshard/internal/config"
	"github.com/dreamware/gradeshard/internal/fragment"
	"github.com/dreamware/gradeshard/internal/sharding"
	"github.com/dreamware/gradeshard/internal/workload"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logFatal("%v", err)
	}
}

// target selects where operations go
type target struct {
	envFile  string
	baseline bool
	server   string
}

func newRootCmd() *cobra.Command {
	t := &target{}

	root := &cobra.Command{
		Use:           "fragrun",
		Short:         "Replay student/grade workloads against fragments or a baseline database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&t.envFile, "env-file", ".env", "env file to load before reading the environment")

	root.AddCommand(
		newMigrateCmd(t),
		newSeedCoursesCmd(t),
		newRunCmd(t),
		newCompareCmd(),
	)
	return root
}

func addTargetFlags(cmd *cobra.Command, t *target, withServer bool) {
	cmd.Flags().BoolVar(&t.baseline, "baseline", false, "use the single unsharded database")
	if withServer {
		cmd.Flags().StringVar(&t.server, "server", "", "fragserver base URL, e.g. http://localhost:8080")
		cmd.MarkFlagsMutuallyExclusive("baseline", "server")
	}
}

func newMigrateCmd(t *target) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the student, grade and course tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, _, err := t.openSet(cmd.Context())
			if err != nil {
				return err
			}
			defer set.Close()

			if err := set.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d fragment(s)\n", set.Len())
			return nil
		},
	}
	addTargetFlags(cmd, t, false)
	return cmd
}

func newSeedCoursesCmd(t *target) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-courses courses.csv",
		Short: "Write course/department rows to every fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ops, closeOps, err := t.openOps(cmd.Context())
			if err != nil {
				return err
			}
			defer closeOps()

			n, err := workload.LoadCourses(cmd.Context(), ops, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d course(s)\n", n)
			return nil
		},
	}
	addTargetFlags(cmd, t, true)
	return cmd
}

func newRunCmd(t *target) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run workload.txt output.txt",
		Short: "Replay a workload and write read results to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			ops, closeOps, err := t.openOps(cmd.Context())
			if err != nil {
				return err
			}
			defer closeOps()

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}

			sum, runErr := workload.NewRunner(ops).Run(cmd.Context(), in, out)
			if err := out.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "workload finished in %dms: %d lines, %d writes, %d reads, %d errors\n",
				sum.Elapsed.Milliseconds(), sum.Lines, sum.Writes, sum.Reads, sum.Errors)
			return nil
		},
	}
	addTargetFlags(cmd, t, true)
	return cmd
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare expected_output.txt output.txt",
		Short: "Compare two output files line by line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := workload.CompareFiles(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
}

// openSet connects to the fragments, or to the baseline database as a
// single fragment
func (t *target) openSet(ctx context.Context) (*fragment.Set, *config.Config, error) {
	cfg, err := config.Load(t.envFile)
	if err != nil {
		return nil, nil, err
	}

	cfgs := cfg.FragmentConfigs()
	if t.baseline {
		cfgs = cfg.BaselineConfig()
	}

	set, err := fragment.OpenSet(ctx, cfgs)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := set.Migrate(ctx); err != nil {
			_ = set.Close()
			return nil, nil, err
		}
	}
	return set, cfg, nil
}

// openOps returns the operation set for the selected target and a function
// releasing it
func (t *target) openOps(ctx context.Context) (sharding.Operations, func(), error) {
	if t.server != "" {
		c := api.NewClient(t.server)
		if _, err := c.Health(ctx); err != nil {
			return nil, nil, fmt.Errorf("server %s: %w", t.server, err)
		}
		return c, func() {}, nil
	}

	set, cfg, err := t.openSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := sharding.New(set, sharding.WithTimeout(cfg.QueryTimeout))
	if err != nil {
		_ = set.Close()
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			log.Printf("close fragments: %v", err)
		}
	}, nil
}
