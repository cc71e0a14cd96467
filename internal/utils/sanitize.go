package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	conversationIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{8,64}$`)
	unsafeIDChars         = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// ValidConversationID reports whether id is 8-64 characters of letters,
// digits and hyphens.
func ValidConversationID(id string) bool {
	return conversationIDPattern.MatchString(id)
}

// SanitizeID strips every character that may not appear in a stored
// conversation file name.
func SanitizeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "")
}

// SanitizeFilename reduces name to its base component. It returns "" for
// names that are empty, dot entries or contain traversal sequences.
func SanitizeFilename(name string) string {
	if strings.Contains(name, "..") || strings.ContainsRune(name, 0) {
		return ""
	}
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return base
}
