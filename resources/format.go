package resources

import "fmt"

// FormatValue formats a canonical value as "1.5 Gi" (memory) or "0.50 cores" (CPU).
func FormatValue(kind Kind, v float64) string {
	if kind == KindMemory {
		return fmt.Sprintf("%.1f Gi", v)
	}
	return fmt.Sprintf("%.2f cores", v)
}

// Label renders the bar caption, e.g. "8.0 Gi / 16.0 Gi (50%)".
func (u Utilization) Label() string {
	return fmt.Sprintf("%s / %s (%d%%)", FormatValue(u.Kind, u.Requested), FormatValue(u.Kind, u.Capacity), u.Percent)
}
