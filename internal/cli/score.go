package cli

import (
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/scoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/tools"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/spf13/cobra"
)

func newScoreCommand() *cobra.Command {
	var (
		attrs      types.ToolAttributes
		hasWeights bool
		licenseOK  bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a Frugal Score from declared attributes",
		Example: `  frugal score --ram "< 1GB" --storage 500MB --offline \
    --hardware CPU --hardware Edge/NPU --context "Edge / On-device" --license-ok`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			score := scoring.Calculate(tools.NormalizeAttributes(attrs), hasWeights, licenseOK)
			return printJSON(cmd, score)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&attrs.MinRAM, "ram", "", `minimum RAM tier ("< 1GB", 4GB, 8GB, 16GB, 32GB+)`)
	flags.StringVar(&attrs.StorageFootprint, "storage", "", "storage footprint, e.g. 500MB or 2.5GB")
	flags.BoolVar(&attrs.IsOfflineCapable, "offline", false, "runs without network access")
	flags.StringArrayVar(&attrs.SupportedHardware, "hardware", nil, "supported hardware (CPU, GPU, Edge/NPU, Apple Silicon); repeatable")
	flags.StringArrayVar(&attrs.DeploymentContext, "context", nil, `deployment context ("Edge / On-device", "On-prem / Sovereign", "Enterprise Backend"); repeatable`)
	flags.BoolVar(&hasWeights, "has-weights", false, "model weights are published")
	flags.BoolVar(&licenseOK, "license-ok", false, "license is permissive")
	return cmd
}
