package resources

// Kind selects the parsing rule and canonical unit of a quantity.
type Kind string

const (
	KindCPU    Kind = "cpu"    // canonical unit: cores
	KindMemory Kind = "memory" // canonical unit: Gi
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindCPU || k == KindMemory
}

// ColorTier is the severity of a utilization or entity state.
type ColorTier string

const (
	TierOK       ColorTier = "ok"
	TierWarn     ColorTier = "warn"
	TierCritical ColorTier = "critical"
)

// Color returns the hex color the widget uses for the tier.
func (t ColorTier) Color() string {
	switch t {
	case TierCritical:
		return "#ef4444"
	case TierWarn:
		return "#f59e0b"
	default:
		return "#22c55e"
	}
}

// Utilization is a requested/capacity pair normalized to the canonical unit of its Kind.
type Utilization struct {
	Kind      Kind      `json:"kind"`
	Requested float64   `json:"requested"`
	Capacity  float64   `json:"capacity"`
	Percent   int       `json:"percent"` // 0–100
	Tier      ColorTier `json:"tier"`
}
