package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedUploadType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/svg+xml", "image/svg+xml; charset=utf-8"} {
		assert.True(t, AllowedUploadType(ct), ct)
	}
	for _, ct := range []string{"", "text/html", "application/pdf", "image/bmp", "image/x-icon"} {
		assert.False(t, AllowedUploadType(ct), ct)
	}
}

func TestUploadSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	s := NewUploadStore(dir)

	name, err := s.Save("avatars/me.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "me.PNG", name)
	assert.Equal(t, "/api/uploads/me.PNG", s.URL(name))

	data, ct, err := s.Open("me.PNG")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", ct)

	// Last write wins.
	_, err = s.Save("me.PNG", strings.NewReader("v2"))
	require.NoError(t, err)
	data, _, err = s.Open("me.PNG")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestUploadSaveRejects(t *testing.T) {
	dir := t.TempDir()
	s := NewUploadStore(dir)

	_, err := s.Save("../escape.png", strings.NewReader("x"))
	assert.True(t, IsValidation(err))

	_, err = s.Save("empty.png", strings.NewReader(""))
	assert.True(t, IsValidation(err))

	_, err = s.Save("big.png", bytes.NewReader(make([]byte, MaxUploadSize+1)))
	assert.True(t, IsValidation(err))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestUploadOpenRejects(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	s := NewUploadStore(dir)

	_, _, err := s.Open("../content/settings.json")
	assert.True(t, IsValidation(err))

	_, _, err = s.Open("notes.txt")
	assert.True(t, IsValidation(err))

	_, _, err = s.Open("missing.webp")
	assert.True(t, errors.Is(err, ErrNotFound))
}
