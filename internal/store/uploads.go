package store

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"portfolio.dev/portfolio-api/internal/utils"
)

const MaxUploadSize = 5 << 20

// AllowedUploadTypes are the MIME types accepted for admin uploads.
var AllowedUploadTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/svg+xml"}

var uploadContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// AllowedUploadType reports whether a declared Content-Type is an accepted
// image type. Parameters such as charset are tolerated.
func AllowedUploadType(contentType string) bool {
	for _, t := range AllowedUploadTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

// UploadStore keeps uploaded images in a flat public directory. A second
// upload under the same name replaces the first.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir}
}

// Save buffers r (at most MaxUploadSize bytes) and writes it as name's base
// component. It returns the stored file name.
func (s *UploadStore) Save(name string, r io.Reader) (string, error) {
	safe := utils.SanitizeFilename(name)
	if safe == "" {
		return "", Invalidf("Invalid filename")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", Invalidf("File too large. Max 5MB.")
	}
	if len(data) == 0 {
		return "", Invalidf("Empty request body")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, safe), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", safe, err)
	}
	return safe, nil
}

// Open returns the bytes and content type of an uploaded file. The type is
// derived from the extension only.
func (s *UploadStore) Open(relPath string) ([]byte, string, error) {
	if strings.Contains(relPath, "..") {
		return nil, "", Invalidf("Invalid path")
	}
	contentType, ok := uploadContentTypes[strings.ToLower(path.Ext(relPath))]
	if !ok {
		return nil, "", Invalidf("Unsupported file type")
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, "", ErrNotFound
	}
	return data, contentType, nil
}

// URL is the public path an uploaded file is served from.
func (s *UploadStore) URL(name string) string {
	return "/api/uploads/" + name
}
