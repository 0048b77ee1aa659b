package resources

import (
	"math"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

const gib = 1024 * 1024 * 1024

// ParseCPU converts a k8s CPU quantity to cores.
// Handles millicores ("500m"), nanocores ("18447n") and whole or fractional cores ("2", "0.5").
// Values below a millicore are kept.
// Binary suffixes (Ki, Gi, ...) are not valid for CPU and are rejected.
func ParseCPU(s string) (float64, bool) {
	q, ok := parseQuantity(s)
	if !ok || q.Format == resource.BinarySI {
		return 0, false
	}
	return finite(q.AsApproximateFloat64())
}

// ParseMemory converts a k8s memory quantity to Gi.
// Supports binary (Ki/Mi/Gi/Ti) and decimal (k/M/G/T) suffixes; a bare number is bytes.
func ParseMemory(s string) (float64, bool) {
	q, ok := parseQuantity(s)
	if !ok {
		return 0, false
	}
	return finite(q.AsApproximateFloat64() / gib)
}

// Parse dispatches to ParseCPU or ParseMemory by kind.
func Parse(kind Kind, s string) (float64, bool) {
	switch kind {
	case KindCPU:
		return ParseCPU(s)
	case KindMemory:
		return ParseMemory(s)
	default:
		return 0, false
	}
}

func parseQuantity(s string) (resource.Quantity, bool) {
	s = strings.TrimSpace(s)
	if !IsQuantityString(s) {
		return resource.Quantity{}, false
	}
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return resource.Quantity{}, false
	}
	return q, true
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
