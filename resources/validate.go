package resources

// maxQuantityLen bounds quantity strings before they reach the big-number parser.
const maxQuantityLen = 64

// IsQuantityString allows only the characters a k8s quantity can contain (whitelist approach).
func IsQuantityString(s string) bool {
	if s == "" || len(s) > maxQuantityLen {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '+' && r != '-' {
			return false
		}
	}
	return true
}
