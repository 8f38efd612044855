// Package cli implements the costshare command line.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the costshare command tree.
func NewRootCommand() *cobra.Command {
	var global GlobalFlags

	root := &cobra.Command{
		Use:   "costshare",
		Short: "Allocate shared service costs across projects",
		Long: `costshare splits the monthly cost of shared services (API keys,
SaaS subscriptions, hosting) across the projects that use them.

Weights come from a per-service override, the configured defaults or an
even split, in that order.

Examples:
  costshare report
  costshare report --json
  costshare override set OPENAI_API_KEY alpha=70 lab=30
  costshare serve --port 4200`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&global.ConfigPath, "config", "config.yaml", "config file")
	root.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCommand(&global),
		newReportCommand(&global),
		newOverrideCommand(&global),
		newSnapshotCommand(&global),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// withApp opens the app for the duration of fn
func withApp(cmd *cobra.Command, global *GlobalFlags, system string, fn func(*App) error) error {
	app, err := NewApp(*global, system, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newServeCommand(global *GlobalFlags) *cobra.Command {
	var flags ServeFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, "api", func(app *App) error {
				return RunServe(app, flags)
			})
		},
	}
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}

func newReportCommand(global *GlobalFlags) *cobra.Command {
	var flags ReportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the current per-project billing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, "billing", func(app *App) error {
				report, err := app.Billing.Compute()
				if err != nil {
					return err
				}
				if flags.JSON {
					return PrintJSON(cmd.OutOrStdout(), report)
				}
				PrintReport(cmd.OutOrStdout(), report, flags.All)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&flags.All, "all", false, "include projects with no costs")
	return cmd
}

func newOverrideCommand(global *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Manage per-service weight overrides",
	}

	setCmd := &cobra.Command{
		Use:   "set <service> <project>=<weight>...",
		Short: "Override a service's allocation weights",
		Long: `Set the allocation weights for a service. Every project the service
is associated with must be given a weight, and no others.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weights, err := ParseWeights(args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, global, "billing", func(app *App) error {
				if err := app.Billing.SetOverride(args[0], weights); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Override saved for %s\n", args[0])
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <service>",
		Short: "Remove a service's override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, "billing", func(app *App) error {
				if err := app.Billing.ClearOverride(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Override cleared for %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}

func newSnapshotCommand(global *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record and list monthly cost snapshots",
	}

	var jsonOut bool
	record := &cobra.Command{
		Use:   "record",
		Short: "Record the current month's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, "billing", func(app *App) error {
				snap, err := app.Billing.RecordSnapshot(time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s recorded: $%.2f\n", snap.Period, snap.Total)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, "billing", func(app *App) error {
				snapshots, err := app.Billing.History()
				if err != nil {
					return err
				}
				if jsonOut {
					return PrintJSON(cmd.OutOrStdout(), snapshots)
				}
				PrintHistory(cmd.OutOrStdout(), snapshots)
				return nil
			})
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "print JSON instead of a table")

	cmd.AddCommand(record, list)
	return cmd
}
