package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-water-pipeline/internal/bootstrap"
	"go-water-pipeline/internal/config"
	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

var (
	configPath  string
	envFile     string
	capturePath string
	days        int
	price       string

	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "pipeline",
	Short:         "pipeline mines captured SEDIF portal responses into water consumption figures.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, log, err = bootstrap.Load(configPath, envFile)
		if err != nil {
			return err
		}
		return applyFlags(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML or JSON options file.")
	flags.StringVar(&envFile, "env", ".env", "Env file loaded before the config.")
	flags.StringVar(&capturePath, "capture", "", "Capture file, directory or URL; replaces the configured sources.")
	flags.IntVar(&days, "days", 0, "Trailing window in days.")
	flags.StringVar(&price, "price", "", "Price per m3 overriding the one found in payloads.")
}

func applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("capture") {
		cfg.Sources = []model.Source{config.SourceFromPath(capturePath)}
	}
	if flags.Changed("days") {
		cfg.Days = days
	}
	if flags.Changed("price") {
		p := utils.ParseOptionalFloat(price)
		if p == nil {
			return fmt.Errorf("invalid --price %q", price)
		}
		cfg.PriceM3 = p
	}
	return cfg.Validate()
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
