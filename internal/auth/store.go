package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ecocharge/console/internal/config"
	"gopkg.in/yaml.v3"
)

const credentialFile = "credential.yaml"

// CredentialKey is the fixed name the admin credential is stored under.
const CredentialKey = "admin_token"

// Store persists the admin credential across process restarts.
type Store interface {
	// Load returns the persisted credential, or "" when none is stored.
	Load() (string, error)

	// Save persists the credential, replacing any previous one.
	Save(token string) error

	// Clear removes the persisted credential. Clearing an empty store is
	// not an error.
	Clear() error
}

// storedCredential is the on-disk shape of the credential file.
type storedCredential struct {
	AdminToken string `yaml:"admin_token"`
}

// FileStore persists the credential as a YAML file in the application config
// directory, written atomically with user-only permissions. The token is
// stored as-is: it is opaque to the client.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the default credential path under
// the application config directory.
func NewFileStore() (*FileStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, credentialFile)}, nil
}

// NewFileStoreAt creates a store backed by an explicit path. Used by tests
// to simulate restarts against a temporary directory.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the persisted credential, or "" when none is stored.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred storedCredential
	if err := yaml.Unmarshal(data, &cred); err != nil {
		return "", fmt.Errorf("failed to parse credential file: %w", err)
	}

	return cred.AdminToken, nil
}

// Save persists the credential, replacing any previous one.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(storedCredential{AdminToken: token})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary credential file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save credential file: %w", err)
	}

	return nil
}

// Clear removes the persisted credential.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}
