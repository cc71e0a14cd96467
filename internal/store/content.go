package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ContentStore reads and writes the named JSON documents behind the site.
// Reads try the remote blob tier first and fall back to <dir>/<name>.json;
// writes go to the remote tier when one is configured, else to the local file.
type ContentStore struct {
	dir    string
	remote BlobStore
	log    *logrus.Entry

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewContentStore returns a store rooted at dir. remote may be nil.
func NewContentStore(dir string, remote BlobStore) *ContentStore {
	return &ContentStore{
		dir:    dir,
		remote: remote,
		log:    logrus.WithField("component", "content"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Dir is the local content directory.
func (s *ContentStore) Dir() string {
	return s.dir
}

// ParseResource validates a resource name from a URL.
func ParseResource(name string) (Resource, error) {
	for _, r := range Resources {
		if string(r) == name {
			return r, nil
		}
	}
	valid := make([]string, len(Resources))
	for i, r := range Resources {
		valid[i] = string(r)
	}
	return "", Invalidf("Invalid resource: %s. Valid: %s", name, strings.Join(valid, ", "))
}

// Read returns the current document for a resource.
func (s *ContentStore) Read(ctx context.Context, resource Resource) (json.RawMessage, error) {
	return s.readDocument(ctx, resourceBlobKey(resource), string(resource)+".json")
}

// Write applies an update to a resource and returns the stored document.
// Array resources are replaced wholesale and only accept an array; object
// resources are shallow-merged with the update's top-level keys.
func (s *ContentStore) Write(ctx context.Context, resource Resource, update json.RawMessage) (json.RawMessage, error) {
	key := resourceBlobKey(resource)
	unlock := s.lock(key)
	defer unlock()

	existing, err := s.Read(ctx, resource)
	if err != nil {
		return nil, err
	}

	var updated []byte
	switch jsonKind(existing) {
	case '[':
		if jsonKind(update) != '[' {
			return nil, Invalidf("Expected array body for this resource")
		}
		if !json.Valid(update) {
			return nil, Invalidf("Invalid JSON in request body")
		}
		updated = update
	default:
		updated, err = mergeObjects(existing, update)
		if err != nil {
			return nil, err
		}
	}

	pretty, err := prettyJSON(updated)
	if err != nil {
		return nil, Invalidf("Invalid JSON in request body")
	}
	if err := s.writeDocument(ctx, key, string(resource)+".json", pretty); err != nil {
		return nil, err
	}
	return json.RawMessage(pretty), nil
}

// Snapshot reads every resource. Resources that fail to load are left nil
// and reported in the joined error.
func (s *ContentStore) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	targets := map[Resource]*json.RawMessage{
		ResourcePersonal:     &snap.Personal,
		ResourceExperience:   &snap.Experience,
		ResourceProjects:     &snap.Projects,
		ResourceSkills:       &snap.Skills,
		ResourceAchievements: &snap.Achievements,
	}
	var errs []error
	for _, r := range Resources {
		data, err := s.Read(ctx, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*targets[r] = data
	}
	return snap, errors.Join(errs...)
}

func (s *ContentStore) readDocument(ctx context.Context, key, file string) (json.RawMessage, error) {
	if s.remote != nil {
		data, err := s.remote.Get(ctx, key)
		switch {
		case err == nil && json.Valid(data):
			return data, nil
		case err == nil:
			s.log.Warnf("Remote blob %s is not valid JSON, falling back to local file", key)
		case !errors.Is(err, ErrBlobMiss):
			s.log.Debugf("Remote blob %s unavailable, falling back to local file: %v", key, err)
		}
	}

	path := filepath.Join(s.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to parse %s", file)
	}
	return data, nil
}

func (s *ContentStore) writeDocument(ctx context.Context, key, file string, data []byte) error {
	if s.remote != nil {
		if err := s.remote.Put(ctx, key, data, "application/json"); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		return nil
	}
	return writeFileAtomic(filepath.Join(s.dir, file), data)
}

func (s *ContentStore) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func mergeObjects(existing, update []byte) ([]byte, error) {
	if jsonKind(update) != '{' {
		return nil, Invalidf("Expected object body for this resource")
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(update, &patch); err != nil {
		return nil, Invalidf("Invalid JSON in request body")
	}
	base := map[string]json.RawMessage{}
	if err := json.Unmarshal(existing, &base); err != nil {
		return nil, fmt.Errorf("failed to parse stored document: %w", err)
	}
	if base == nil {
		base = map[string]json.RawMessage{}
	}
	for k, v := range patch {
		base[k] = v
	}
	return json.Marshal(base)
}
