package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"filevault/internal/storage"
	"filevault/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type bindingKey struct {
	username, stem, extension string
}

// memDirectory is an in-memory Directory for tests.
type memDirectory struct {
	mu       sync.Mutex
	users    map[string]store.User
	bindings map[bindingKey]store.FileBinding
	configs  map[string]json.RawMessage

	// failure injection
	dropCreatedUsers bool
	configErr        error
	bindErr          error
	configReads      int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:    map[string]store.User{},
		bindings: map[bindingKey]store.FileBinding{},
		configs:  map[string]json.RawMessage{},
	}
}

func (m *memDirectory) CreateUser(_ context.Context, username, password string, isAdmin bool) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return store.User{}, store.ErrConflict
	}
	u := store.User{ID: uuid.New(), Username: username, Password: password, IsAdmin: isAdmin, CreatedAt: time.Now()}
	if !m.dropCreatedUsers {
		m.users[username] = u
	}
	return u, nil
}

func (m *memDirectory) GetUserByUsername(_ context.Context, username string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memDirectory) UpsertFileBinding(_ context.Context, username, stem, extension, blobKey string, sizeBytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindErr != nil {
		return m.bindErr
	}
	k := bindingKey{username, stem, extension}
	b, ok := m.bindings[k]
	if !ok {
		b = store.FileBinding{ID: uuid.New(), Username: username, Stem: stem, Extension: extension}
	}
	b.BlobKey = blobKey
	b.SizeBytes = sizeBytes
	b.UpdatedAt = time.Now()
	m.bindings[k] = b
	return nil
}

func (m *memDirectory) GetFileBinding(_ context.Context, username, stem, extension string) (store.FileBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[bindingKey{username, stem, extension}]
	if !ok {
		return store.FileBinding{}, pgx.ErrNoRows
	}
	return b, nil
}

func (m *memDirectory) ListFileBindings(_ context.Context, username string) ([]store.FileBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.FileBinding
	for k, b := range m.bindings {
		if k.username == username {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stem != out[j].Stem {
			return out[i].Stem < out[j].Stem
		}
		return out[i].Extension < out[j].Extension
	})
	return out, nil
}

func (m *memDirectory) GetSystemConfig(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configReads++
	if m.configErr != nil {
		return nil, m.configErr
	}
	raw, ok := m.configs[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return raw, nil
}

func (m *memDirectory) UpsertSystemConfig(_ context.Context, key string, config json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.configErr != nil {
		return m.configErr
	}
	m.configs[key] = config
	return nil
}

func (m *memDirectory) InsertSystemConfigIfAbsent(_ context.Context, key string, config json.RawMessage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[key]; ok {
		return false, nil
	}
	m.configs[key] = config
	return true, nil
}

func (m *memDirectory) binding(username, stem, extension string) (store.FileBinding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[bindingKey{username, stem, extension}]
	return b, ok
}

// unverifiableBlobs accepts writes but never reports them as present.
type unverifiableBlobs struct {
	storage.BlobStorage
}

func (unverifiableBlobs) Exists(context.Context, string) (bool, error) { return false, nil }

var errDirectoryDown = errors.New("directory unavailable")

func newTestService(t *testing.T) (*Service, *memDirectory) {
	t.Helper()
	blobs, err := storage.NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}
	dir := newMemDirectory()
	return New(Options{Directory: dir, Blobs: blobs}), dir
}
