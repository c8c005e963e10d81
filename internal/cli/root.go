package cli

import (
	"github.com/spf13/cobra"

	"retailtracker/internal/config"
)

// RootOptions holds global flags for all ledgerctl commands.
type RootOptions struct {
	DBPath string
}

// NewRootCommand creates the root command for the ledgerctl admin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Administer the retailtracker SQLite ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", config.Load().SQLiteDBPath, "path to the SQLite database")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}
