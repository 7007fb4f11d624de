package commands

import (
	"encoding/json"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go-water-pipeline/internal/bootstrap"
	"go-water-pipeline/internal/model"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--capture <path|url>] [--days <n>] [--price <eur>]",
	Short: "Runs the pipeline once and prints the resulting document.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireSources(); err != nil {
			return err
		}
		runner := bootstrap.NewRunner(cfg, log)
		report := runner.Run(cmd.Context(), uuid.NewString())
		return printDocument(os.Stdout, report)
	},
}

func printDocument(w io.Writer, report model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
