// solrsync reconciles the records of a target Solr index with a source index.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/esgf/solrsync/cmd"
	"github.com/esgf/solrsync/config"
	"github.com/esgf/solrsync/reconcile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode is 2 for a check that found divergence and 1 for any other error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNotInSync):
		return 2
	default:
		return 1
	}
}

func sourceAndTarget(c *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("%s takes a source and a target url or none, got %d args", c.Name(), len(args))
	}
	return nil
}

func newRootCmd(out io.Writer, opts ...Option) *cobra.Command {
	conf := config.DefaultConfig()
	root := &cobra.Command{
		Use:          "solrsync",
		Short:        "Reconcile a target Solr index with a source index",
		SilenceUsage: true,
	}
	root.SetOut(out)
	cmd.AddFlags(root.PersistentFlags(), &conf)

	// setup configures the app of a subcommand. Positional urls override
	// the configured indexes.
	setup := func(c *cobra.Command, args []string) (*App, error) {
		if err := cmd.Configure(c.Flags(), &conf); err != nil {
			return nil, err
		}
		if len(args) == 2 {
			conf.Source.URL = args[0]
			conf.Target.URL = args[1]
		}
		app := New(&conf, c.OutOrStdout(), opts...)
		if err := app.Initialize(); err != nil {
			return nil, err
		}
		return app, nil
	}
	session := func(mode, short string, localize *bool) *cobra.Command {
		return &cobra.Command{
			Use:   mode + " [source target]",
			Short: short,
			Args:  sourceAndTarget,
			RunE: func(c *cobra.Command, args []string) error {
				app, err := setup(c, args)
				if err != nil {
					return err
				}
				defer app.Cleanup()
				return app.Run(c.Context(), mode, localize != nil && *localize)
			},
		}
	}

	root.AddCommand(
		session(reconcile.ModeSync, "Repair the target until every core matches the source", nil),
		session(reconcile.ModeMigrate, "Copy matching records from the source without comparing", nil),
		session(reconcile.ModeHarvest, "Copy all matching records in rounds", nil),
	)

	var localize bool
	check := session(reconcile.ModeCheck, "Compare the indexes without writing", &localize)
	check.Flags().BoolVar(&localize, "localize", false, "walk diverged cores to count divergent windows")
	root.AddCommand(check)

	checkpointsCmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Inspect or clear resume points of interrupted syncs",
	}
	checkpointsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored checkpoints",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				app, err := setup(c, args)
				if err != nil {
					return err
				}
				defer app.Cleanup()
				return app.ListCheckpoints()
			},
		},
		&cobra.Command{
			Use:   "clear [target]",
			Short: "Clear the checkpoints of a target",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				app, err := setup(c, nil)
				if err != nil {
					return err
				}
				defer app.Cleanup()
				if len(args) == 1 {
					conf.Target.URL = args[0]
				}
				if conf.Target.URL == "" {
					return errors.New("target url is required")
				}
				return app.ClearCheckpoints()
			},
		},
	)
	root.AddCommand(checkpointsCmd)

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show the latest sessions",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			app, err := setup(c, args)
			if err != nil {
				return err
			}
			defer app.Cleanup()
			return app.History(limit)
		},
	}
	history.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show")
	root.AddCommand(history)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			version := cmd.Version
			if version == "" {
				version = "dev"
			}
			fmt.Fprintf(c.OutOrStdout(), "solrsync %s", version)
			if cmd.Commit != "" {
				fmt.Fprintf(c.OutOrStdout(), " (%s %s)", cmd.Branch, cmd.Commit)
			}
			fmt.Fprintln(c.OutOrStdout())
		},
	})
	return root
}
