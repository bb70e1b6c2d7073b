package scoring

import (
	"testing"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var (
	ramValues        = []interface{}{"< 1GB", "4GB", "8GB", "16GB", "32GB+", "", "unknown", "64GB"}
	storageValues    = []interface{}{"", "500MB", "1.5GB", "3GB", "10GB", "n/a", "-2GB", "1e3GB", "0.1 gb"}
	hardwareValues   = []string{"CPU", "GPU", "Edge/NPU", "Apple Silicon", "TPU", ""}
	deploymentValues = []string{"Edge / On-device", "On-prem / Sovereign", "Enterprise Backend", "Cloud"}
)

// genSubset picks an arbitrary subset of values, duplicates allowed.
func genSubset(values []string) gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(values)-1)).Map(func(idx []int) []string {
		out := make([]string, len(idx))
		for i, n := range idx {
			out[i] = values[n]
		}
		return out
	})
}

func genAttributes() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(ramValues...),
		gen.OneGenOf(gen.OneConstOf(storageValues...), gen.AlphaString()),
		gen.Bool(),
		genSubset(hardwareValues),
		genSubset(deploymentValues),
	).Map(func(v []interface{}) types.ToolAttributes {
		return types.ToolAttributes{
			MinRAM:            v[0].(string),
			StorageFootprint:  v[1].(string),
			IsOfflineCapable:  v[2].(bool),
			SupportedHardware: v[3].([]string),
			DeploymentContext: v[4].([]string),
		}
	})
}

func TestCalculateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("total stays within 0..100", prop.ForAll(
		func(attrs types.ToolAttributes, hasWeights, licenseOK bool) bool {
			s := Calculate(attrs, hasWeights, licenseOK)
			return s.Total >= 0 && s.Total <= 100
		},
		genAttributes(), gen.Bool(), gen.Bool(),
	))

	properties.Property("every sub-score respects its cap", prop.ForAll(
		func(attrs types.ToolAttributes, hasWeights, licenseOK bool) bool {
			s := Calculate(attrs, hasWeights, licenseOK)
			return s.Footprint >= 0 && s.Footprint <= MaxFootprint &&
				s.Hardware >= 0 && s.Hardware <= MaxHardware &&
				s.Energy >= 0 && s.Energy <= MaxEnergy &&
				s.TCO >= 0 && s.TCO <= MaxTCO &&
				s.Data >= 0 && s.Data <= MaxData
		},
		genAttributes(), gen.Bool(), gen.Bool(),
	))

	properties.Property("total is the sum of sub-scores", prop.ForAll(
		func(attrs types.ToolAttributes, licenseOK bool) bool {
			s := Calculate(attrs, true, licenseOK)
			return s.Total == s.Footprint+s.Hardware+s.Energy+s.TCO+s.Data
		},
		genAttributes(), gen.Bool(),
	))

	properties.Property("calculation is deterministic", prop.ForAll(
		func(attrs types.ToolAttributes, hasWeights, licenseOK bool) bool {
			return Calculate(attrs, hasWeights, licenseOK) == Calculate(attrs, hasWeights, licenseOK)
		},
		genAttributes(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}
