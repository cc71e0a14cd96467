package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	tokens := []string{"ghp_abcdefghijklmnop1234", "12345", "github_pat_XYZW"}
	for _, tok := range tokens {
		masked := MaskToken(tok)
		suffix := tok[len(tok)-4:]
		assert.True(t, strings.HasSuffix(masked, suffix), masked)
		assert.Equal(t, strings.Repeat("*", len(masked)-4), masked[:len(masked)-4])
		assert.NotContains(t, masked, tok[:len(tok)-4])
		assert.True(t, IsMasked(masked))
	}

	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, strings.Repeat("*", 16), MaskToken("abcd"))
	assert.False(t, IsMasked("ghp_fresh"))
}

func TestValidConversationID(t *testing.T) {
	assert.True(t, ValidConversationID("abcd1234"))
	assert.True(t, ValidConversationID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.True(t, ValidConversationID(strings.Repeat("a", 64)))

	assert.False(t, ValidConversationID("short"))
	assert.False(t, ValidConversationID(strings.Repeat("a", 65)))
	assert.False(t, ValidConversationID("../../etc/passwd"))
	assert.False(t, ValidConversationID("abcd_1234"))
	assert.False(t, ValidConversationID("abcd1234\n"))
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "etcpasswd", SanitizeID("../../etc/passwd"))
	assert.Equal(t, "abc-123", SanitizeID("abc-123"))
	assert.Equal(t, "", SanitizeID("/./"))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.png":           "photo.png",
		"nested/dir/logo.svg": "logo.svg",
		"win\\path\\a.gif":    "a.gif",
		"../secret.png":       "",
		"..":                  "",
		".":                   "",
		"":                    "",
		"/":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}
