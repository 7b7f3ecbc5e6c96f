// rosterctl runs maintenance tasks against the wedding manager database.
package main

import (
	"log/slog"
	"os"

	"github.com/nuptial-ops/wedding-manager/internal/log"
	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "rosterctl",
		Short:        "Maintenance tasks for the wedding manager",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			handler := log.NewPrettyJSONHandler(cmd.ErrOrStderr(), &log.PrettyJSONHandlerOptions{
				HandlerOptions: slog.HandlerOptions{Level: level},
			})
			slog.SetDefault(slog.New(log.New(handler)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(newMigrateCommand(), newExportCommand())
	return root
}

type databaseConfig struct {
	Postgresql config.Postgresql `envPrefix:"DATABASE_"`
}
