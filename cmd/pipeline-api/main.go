package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-water-pipeline/internal/api"
	"go-water-pipeline/internal/api/handler"
	"go-water-pipeline/internal/bootstrap"
	"go-water-pipeline/pkg/router"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:          "pipeline-api",
	Short:        "pipeline-api serves the run API and its Swagger UI.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap.Load(configPath, envFile)
		if err != nil {
			return err
		}

		runner := bootstrap.NewRunner(cfg, log)
		runs := handler.NewRunsHandler(runner, handler.NewRegistry(handler.DefaultRegistrySize), log.WithField("component", "api"))

		r := router.New(log.WithField("component", "http"))
		api.RegisterRoutes(r, runs)
		return r.Start(cmd.Context(), cfg.API.Addr)
	},
}

func main() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML or JSON options file.")
	rootCmd.Flags().StringVar(&envFile, "env", ".env", "Env file loaded before the config.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
