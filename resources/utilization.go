package resources

import "math"

const (
	warnAbove     = 60
	criticalAbove = 85
)

// ComputeUtilization normalizes requested and capacity to the canonical unit of kind and
// derives the bar percentage and tier.
//
// It returns false when there is nothing to draw: capacity is empty, malformed, zero or
// negative, or requested is malformed. An empty requested value counts as zero.
func ComputeUtilization(kind Kind, requested, capacity string) (Utilization, bool) {
	capVal, ok := Parse(kind, capacity)
	if !ok || capVal <= 0 {
		return Utilization{}, false
	}

	var reqVal float64
	if requested != "" {
		reqVal, ok = Parse(kind, requested)
		if !ok {
			return Utilization{}, false
		}
	}

	pct := math.Round(math.Min(100, reqVal/capVal*100))
	if math.IsNaN(pct) {
		return Utilization{}, false
	}
	if pct < 0 {
		pct = 0
	}

	p := int(pct)
	return Utilization{
		Kind:      kind,
		Requested: reqVal,
		Capacity:  capVal,
		Percent:   p,
		Tier:      TierFor(p),
	}, true
}

// TierFor maps a utilization percentage to its tier.
func TierFor(percent int) ColorTier {
	switch {
	case percent > criticalAbove:
		return TierCritical
	case percent > warnAbove:
		return TierWarn
	default:
		return TierOK
	}
}
