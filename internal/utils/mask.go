package utils

import "strings"

const (
	MaskChar      = "*"
	maskPrefixLen = 16
	visibleSuffix = 4
)

// MaskToken hides a credential for display, keeping only its last four
// characters. Tokens of four characters or fewer are hidden entirely.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	mask := strings.Repeat(MaskChar, maskPrefixLen)
	if len(token) <= visibleSuffix {
		return mask
	}
	return mask + token[len(token)-visibleSuffix:]
}

// IsMasked reports whether a value still carries mask characters, meaning
// it was echoed back from a masked display rather than newly entered.
func IsMasked(value string) bool {
	return strings.Contains(value, MaskChar)
}
