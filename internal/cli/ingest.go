package cli

import (
	"context"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/app"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/scoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/spf13/cobra"
)

type ingestOutput struct {
	Result types.IngestResult `json:"result"`
	Score  types.FrugalScore  `json:"score"`
}

func newIngestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <identifier>",
		Short: "Vet a GitHub repository or Hugging Face model",
		Long: "Fetch registry metadata for a GitHub URL, a Hugging Face URL or a model id,\n" +
			"print the pre-filled fields and vetting snapshot, and the score they imply\n" +
			"before any resource attributes are declared.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			registries := app.NewRegistries(cfg, monitoring.NewMetrics(), logger)
			defer registries.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Registries.RequestTimeout)
			defer cancel()

			result, err := registries.Analyzer.Ingest(ctx, args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd, ingestOutput{
				Result: result,
				Score:  scoring.Calculate(types.ToolAttributes{}, result.Analysis.HasWeights, result.Analysis.LicenseOK),
			})
		},
	}
}
