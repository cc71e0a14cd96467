package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBlobStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteBlobStore(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Get(ctx, "content/personal.json")
	assert.True(t, errors.Is(err, ErrBlobMiss))

	require.NoError(t, s.Put(ctx, "content/personal.json", []byte(`{"v":1}`), "application/json"))
	require.NoError(t, s.Put(ctx, "content/personal.json", []byte(`{"v":2}`), "application/json"))

	data, err := s.Get(ctx, "content/personal.json")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
}

func TestSQLiteBlobStoreBacksContentStore(t *testing.T) {
	blobs, err := NewSQLiteBlobStore(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	defer blobs.Close()

	s := NewContentStore(seedContent(t), blobs)
	_, err = s.Write(context.Background(), ResourceSkills, []byte(`[{"category":"Rust","skills":[]}]`))
	require.NoError(t, err)

	data, err := s.Read(context.Background(), ResourceSkills)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rust")
}

func newFakeObjectServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	objects := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/")
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			data, ok := objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(data)
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[key] = data
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPBlobStore(t *testing.T) {
	srv := newFakeObjectServer(t, "blob-token")
	s := NewHTTPBlobStore(srv.URL+"/", "blob-token")
	defer s.Close()
	ctx := context.Background()

	_, err := s.Get(ctx, "content/projects.json")
	assert.True(t, errors.Is(err, ErrBlobMiss))

	require.NoError(t, s.Put(ctx, "content/projects.json", []byte(`[1,2]`), "application/json"))
	data, err := s.Get(ctx, "content/projects.json")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))

	unauthorized := NewHTTPBlobStore(srv.URL, "wrong")
	_, err = unauthorized.Get(ctx, "content/projects.json")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBlobMiss))
	assert.Error(t, unauthorized.Put(ctx, "content/projects.json", []byte(`[]`), "application/json"))
}
