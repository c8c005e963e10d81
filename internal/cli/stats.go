package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"retailtracker/internal/dashboard"
	"retailtracker/internal/storage"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	UserID string
	Now    string
	Engine string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's dashboard stats as JSON",
		Long: `Print a user's dashboard stats as JSON.

Example:
  ledgerctl stats --user 3f0c... --now 2024-01-10T12:00:00Z --engine scan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&opts.Now, "now", "", "instant to compute the stats at, RFC3339 (default: current time)")
	cmd.Flags().StringVar(&opts.Engine, "engine", "pushdown", "stats engine (scan|pushdown)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runStats(cmd *cobra.Command, opts *StatsOptions) error {
	now := time.Now().UTC()
	if opts.Now != "" {
		t, err := time.Parse(time.RFC3339, opts.Now)
		if err != nil {
			return fmt.Errorf("invalid --now %q: %w", opts.Now, err)
		}
		now = t
	}

	repo, err := storage.NewSQLiteRepository(opts.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	var engine dashboard.Engine
	switch opts.Engine {
	case "scan":
		engine = dashboard.NewScanEngine(repo)
	case "pushdown":
		engine = dashboard.NewPushdownEngine(repo)
	default:
		return errors.New("invalid --engine: must be scan or pushdown")
	}

	stats, err := engine.Stats(cmd.Context(), opts.UserID, now)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
