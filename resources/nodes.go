package resources

import "strings"

// NodeRoles builds the role list from Rancher's per-node role flags.
// Falls back to "worker" if no role flag is set.
func NodeRoles(controlPlane, etcd, worker bool) []string {
	roles := []string{}
	if controlPlane {
		roles = append(roles, "control-plane")
	}
	if etcd {
		roles = append(roles, "etcd")
	}
	if worker || len(roles) == 0 {
		roles = append(roles, "worker")
	}
	return roles
}

// IsUp reports whether a cluster or node state counts as healthy ("active" or "running").
func IsUp(state string) bool {
	switch strings.ToLower(state) {
	case "active", "running":
		return true
	default:
		return false
	}
}

// StateTier classifies an entity state for its badge: healthy, transitional or failed.
func StateTier(state string) ColorTier {
	if IsUp(state) {
		return TierOK
	}
	switch strings.ToLower(state) {
	case "provisioning", "updating", "upgrading", "migrating":
		return TierWarn
	default:
		return TierCritical
	}
}
