package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPBlobStore talks to an object store that serves GET and accepts PUT on
// <baseURL>/<key>, authenticated with a bearer token.
type HTTPBlobStore struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPBlobStore(baseURL, token string) *HTTPBlobStore {
	return &HTTPBlobStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPBlobStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *HTTPBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob GET %s failed: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrBlobMiss
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob GET %s returned status %d", key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	req, err := s.newRequest(ctx, http.MethodPut, key, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("blob PUT %s failed: %w", key, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("blob PUT %s returned status %d", key, resp.StatusCode)
	}
	return nil
}

func (s *HTTPBlobStore) newRequest(ctx context.Context, method, key string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+strings.TrimLeft(key, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return req, nil
}
