// Package scoring computes the Frugal Score of a tool from its declared
// attributes and its vetting snapshot.
package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
)

// Per-dimension caps. They sum to 100.
const (
	MaxFootprint = 30
	MaxHardware  = 20
	MaxEnergy    = 25
	MaxTCO       = 15
	MaxData      = 10
)

var (
	ramPoints = map[string]int{
		types.RAMUnder1GB: 15,
		types.RAM4GB:      12,
		types.RAM8GB:      8,
	}
	defaultRAMPoints = 4

	emptyStoragePoints = 5

	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Calculate returns the Frugal Score for attrs. It never fails: unknown or
// missing values fall through to the lowest-scoring branch of each rule.
// hasWeights is part of the vetting snapshot handed to the calculator but no
// dimension currently weighs it.
func Calculate(attrs types.ToolAttributes, hasWeights, licenseOK bool) types.FrugalScore {
	_ = hasWeights

	score := types.FrugalScore{
		Footprint: footprintScore(attrs),
		Hardware:  hardwareScore(attrs),
		Energy:    energyScore(attrs),
		TCO:       tcoScore(attrs, licenseOK),
		Data:      dataScore(attrs),
	}
	score.Total = score.Footprint + score.Hardware + score.Energy + score.TCO + score.Data
	return score
}

func footprintScore(attrs types.ToolAttributes) int {
	return capAt(RAMPoints(attrs.MinRAM)+StoragePoints(attrs.StorageFootprint), MaxFootprint)
}

// RAMPoints is the footprint contribution of a declared RAM tier
func RAMPoints(minRAM string) int {
	if points, ok := ramPoints[strings.TrimSpace(minRAM)]; ok {
		return points
	}
	return defaultRAMPoints
}

// StoragePoints is the footprint contribution of a storage string such as
// "500MB" or "2.5GB". Anything stated in megabytes counts as smallest; an
// unparseable magnitude, including a blank but non-empty string, is scored
// as the largest bucket.
func StoragePoints(storage string) int {
	if storage == "" {
		return emptyStoragePoints
	}
	storage = strings.TrimSpace(storage)
	if strings.Contains(strings.ToLower(storage), "mb") {
		return 15
	}

	size, ok := parseLeadingNumber(storage)
	switch {
	case !ok:
		return 4
	case size < 2:
		return 12
	case size < 5:
		return 8
	default:
		return 4
	}
}

func parseLeadingNumber(s string) (float64, bool) {
	match := leadingNumber.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func hardwareScore(attrs types.ToolAttributes) int {
	score := 0
	if attrs.HasHardware(types.HardwareCPU) {
		score += 8
	}
	if attrs.HasHardware(types.HardwareEdgeNPU) || attrs.HasHardware(types.HardwareAppleSilicon) {
		score += 8
	}
	if attrs.HasHardware(types.HardwareGPU) {
		score += 4
	}
	return capAt(score, MaxHardware)
}

func energyScore(attrs types.ToolAttributes) int {
	score := 0
	if attrs.IsOfflineCapable {
		score += 10
	}
	if attrs.HasHardware(types.HardwareEdgeNPU) {
		score += 10
	}
	if attrs.HasHardware(types.HardwareCPU) {
		score += 5
	}
	return capAt(score, MaxEnergy)
}

func tcoScore(attrs types.ToolAttributes, licenseOK bool) int {
	score := 0
	if licenseOK {
		score += 10
	}
	if attrs.HasDeployment(types.DeploymentOnPrem) {
		score += 5
	}
	return capAt(score, MaxTCO)
}

// offline tools keep data local; everything else gets partial credit
func dataScore(attrs types.ToolAttributes) int {
	if attrs.IsOfflineCapable {
		return capAt(10, MaxData)
	}
	return capAt(5, MaxData)
}

func capAt(v, max int) int {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}
