package scoring

import (
	"testing"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestStoragePoints(t *testing.T) {
	tests := []struct {
		name     string
		storage  string
		expected int
	}{
		{name: "megabytes are smallest bucket", storage: "500MB", expected: 15},
		{name: "lowercase megabytes", storage: "750mb", expected: 15},
		{name: "under two gigabytes", storage: "1.5GB", expected: 12},
		{name: "under five gigabytes", storage: "3GB", expected: 8},
		{name: "large model", storage: "10GB", expected: 4},
		{name: "empty string is neutral", storage: "", expected: 5},
		{name: "whitespace only is unparseable", storage: "   ", expected: 4},
		{name: "padded megabytes", storage: "  64MB ", expected: 15},
		{name: "unparseable falls to worst bucket", storage: "about two gigs", expected: 4},
		{name: "leading decimal point", storage: ".8GB", expected: 12},
		{name: "number with space before unit", storage: "4.9 GB", expected: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StoragePoints(tt.storage))
		})
	}
}

func TestRAMPoints(t *testing.T) {
	tests := []struct {
		ram      string
		expected int
	}{
		{ram: "< 1GB", expected: 15},
		{ram: "4GB", expected: 12},
		{ram: "8GB", expected: 8},
		{ram: "16GB", expected: 4},
		{ram: "32GB+", expected: 4},
		{ram: "", expected: 4},
		{ram: "a lot", expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.ram, func(t *testing.T) {
			assert.Equal(t, tt.expected, RAMPoints(tt.ram))
		})
	}
}

func TestCalculate_EndToEnd(t *testing.T) {
	attrs := types.ToolAttributes{
		MinRAM:            "< 1GB",
		StorageFootprint:  "500MB",
		IsOfflineCapable:  true,
		SupportedHardware: []string{"CPU", "Edge/NPU"},
		DeploymentContext: []string{"On-prem / Sovereign"},
	}

	score := Calculate(attrs, true, true)

	assert.Equal(t, types.FrugalScore{
		Total:     96,
		Footprint: 30,
		Hardware:  16,
		Energy:    25,
		TCO:       15,
		Data:      10,
	}, score)
}

func TestCalculate_SubScores(t *testing.T) {
	tests := []struct {
		name      string
		attrs     types.ToolAttributes
		licenseOK bool
		expected  types.FrugalScore
	}{
		{
			name:  "empty attributes get conservative defaults",
			attrs: types.ToolAttributes{},
			expected: types.FrugalScore{
				Footprint: 9, // 4 RAM + 5 neutral storage
				Data:      5,
				Total:     14,
			},
		},
		{
			name: "all hardware is capped at twenty",
			attrs: types.ToolAttributes{
				MinRAM:            "16GB",
				StorageFootprint:  "20GB",
				SupportedHardware: []string{"CPU", "GPU", "Edge/NPU", "Apple Silicon"},
			},
			expected: types.FrugalScore{
				Footprint: 8,
				Hardware:  20,
				Energy:    15,
				Data:      5,
				Total:     48,
			},
		},
		{
			name: "apple silicon counts toward hardware but not energy",
			attrs: types.ToolAttributes{
				MinRAM:            "8GB",
				StorageFootprint:  "3GB",
				SupportedHardware: []string{"Apple Silicon"},
			},
			expected: types.FrugalScore{
				Footprint: 16,
				Hardware:  8,
				Data:      5,
				Total:     29,
			},
		},
		{
			name: "license without on-prem",
			attrs: types.ToolAttributes{
				MinRAM:            "4GB",
				StorageFootprint:  "1GB",
				DeploymentContext: []string{"Enterprise Backend"},
			},
			licenseOK: true,
			expected: types.FrugalScore{
				Footprint: 24,
				TCO:       10,
				Data:      5,
				Total:     39,
			},
		},
		{
			name: "gpu only cloud tool",
			attrs: types.ToolAttributes{
				MinRAM:            "32GB+",
				StorageFootprint:  "140GB",
				SupportedHardware: []string{"GPU"},
				DeploymentContext: []string{"On-prem / Sovereign"},
			},
			expected: types.FrugalScore{
				Footprint: 8,
				Hardware:  4,
				TCO:       5,
				Data:      5,
				Total:     22,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calculate(tt.attrs, false, tt.licenseOK))
		})
	}
}

func TestCalculate_HasWeightsDoesNotChangeScore(t *testing.T) {
	attrs := types.ToolAttributes{MinRAM: "4GB", StorageFootprint: "2GB", IsOfflineCapable: true}

	assert.Equal(t, Calculate(attrs, false, true), Calculate(attrs, true, true))
}
