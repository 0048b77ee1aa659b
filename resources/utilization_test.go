package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUtilization(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		requested string
		capacity  string
		wantReq   float64
		wantCap   float64
		wantPct   int
		wantTier  ColorTier
	}{
		{"millicores of cores", KindCPU, "500m", "4", 0.5, 4, 13, TierOK},
		{"half memory", KindMemory, "8Gi", "16Gi", 8, 16, 50, TierOK},
		{"over capacity clamps", KindMemory, "20Gi", "16Gi", 20, 16, 100, TierCritical},
		{"empty requested is zero", KindCPU, "", "4", 0, 4, 0, TierOK},
		{"warn boundary", KindCPU, "2450m", "4", 2.45, 4, 61, TierWarn},
		{"sixty is ok", KindCPU, "2400m", "4", 2.4, 4, 60, TierOK},
		{"eighty five is warn", KindCPU, "3400m", "4", 3.4, 4, 85, TierWarn},
		{"eighty six is critical", KindCPU, "3440m", "4", 3.44, 4, 86, TierCritical},
		{"mixed memory units", KindMemory, "4096Mi", "16777216Ki", 4, 16, 25, TierOK},
		{"tebibytes", KindMemory, "512Gi", "1Ti", 512, 1024, 50, TierOK},
		{"bare bytes", KindMemory, "1073741824", "2Gi", 1, 2, 50, TierOK},
		{"sub-millicore cores", KindCPU, "0.0005", "0.001", 0.0005, 0.001, 50, TierOK},
		{"microcores", KindCPU, "100u", "1m", 0.0001, 0.001, 10, TierOK},
		{"large cpu", KindCPU, "1e18", "2e18", 1e18, 2e18, 50, TierOK},
		{"huge cpu capacity", KindCPU, "1", "1e30", 1, 1e30, 0, TierOK},
		{"negative requested clamps to zero", KindCPU, "-1", "4", -1, 4, 0, TierOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeUtilization(tt.kind, tt.requested, tt.capacity)
			require.True(t, ok)
			assert.Equal(t, tt.kind, got.Kind)
			assert.InDelta(t, tt.wantReq, got.Requested, tolerance(tt.wantReq))
			assert.InDelta(t, tt.wantCap, got.Capacity, tolerance(tt.wantCap))
			assert.Equal(t, tt.wantPct, got.Percent)
			assert.Equal(t, tt.wantTier, got.Tier)
		})
	}
}

func TestComputeUtilization_NoResult(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		requested string
		capacity  string
	}{
		{"zero capacity", KindMemory, "1Gi", "0"},
		{"empty capacity", KindCPU, "1", ""},
		{"negative capacity", KindCPU, "1", "-4"},
		{"malformed requested", KindMemory, "foo", "16Gi"},
		{"malformed capacity", KindMemory, "1Gi", "lots"},
		{"binary suffix on cpu", KindCPU, "1Gi", "4"},
		{"unknown kind", Kind("gpu"), "1", "4"},
		{"html in capacity", KindCPU, "1", "<b>4</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeUtilization(tt.kind, tt.requested, tt.capacity)
			assert.False(t, ok)
			assert.Equal(t, Utilization{}, got)
		})
	}
}

func TestComputeUtilization_Idempotent(t *testing.T) {
	first, ok1 := ComputeUtilization(KindMemory, "12Gi", "16Gi")
	second, ok2 := ComputeUtilization(KindMemory, "12Gi", "16Gi")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, 75, first.Percent)
	assert.Equal(t, TierWarn, first.Tier)
}

func TestUtilizationLabel(t *testing.T) {
	cpu, ok := ComputeUtilization(KindCPU, "500m", "4")
	require.True(t, ok)
	assert.Equal(t, "0.50 cores / 4.00 cores (13%)", cpu.Label())

	mem, ok := ComputeUtilization(KindMemory, "1536Mi", "16Gi")
	require.True(t, ok)
	assert.Equal(t, "1.5 Gi / 16.0 Gi (9%)", mem.Label())
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "#22c55e", TierOK.Color())
	assert.Equal(t, "#f59e0b", TierWarn.Color())
	assert.Equal(t, "#ef4444", TierCritical.Color())
}
