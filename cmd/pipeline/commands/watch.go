package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go-water-pipeline/internal/bootstrap"
	"go-water-pipeline/internal/schedule"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Runs the pipeline now, then every refresh interval, until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireSources(); err != nil {
			return err
		}
		scheduler, err := schedule.New(cfg.RefreshInterval(), log.WithField("component", "schedule"))
		if err != nil {
			return err
		}
		runner := bootstrap.NewRunner(cfg, log)

		return scheduler.Run(cmd.Context(), func(ctx context.Context) {
			runner.Run(ctx, uuid.NewString())
		})
	},
}
