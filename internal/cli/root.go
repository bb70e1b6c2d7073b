// Package cli implements the frugal command line tool.
package cli

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/config"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the command tree. Results go to out; logs go to
// stderr so output stays machine readable.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "frugal",
		Short:         "Frugal AI Hub - ingest and score resource-efficient AI tools",
		Long:          "Inspect GitHub repositories and Hugging Face models and compute their Frugal Score.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newIngestCommand(opts))
	root.AddCommand(newScoreCommand())
	return root
}

// Execute runs the CLI against stdout
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}

func (o *rootOptions) load() (*config.Config, *monitoring.Logger, error) {
	cfg, err := config.Load(o.configPath, ".env")
	if err != nil {
		return nil, nil, err
	}
	logger := monitoring.NewLoggerTo(os.Stderr, monitoring.ParseLevel(o.logLevel))
	slog.SetDefault(logger.Logger)
	return cfg, logger, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
