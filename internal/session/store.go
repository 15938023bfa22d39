// Package session holds the access/refresh token pair for the running client.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Tokens is the session token pair. Access is the short-lived bearer
// credential; Refresh is used solely to mint a new access token.
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Store holds the current token pair. Get returns a value snapshot, so an
// in-flight request keeps the tokens it read even if a concurrent refresh
// overwrites the store.
type Store interface {
	Get() (Tokens, bool)
	Set(tokens Tokens) error
	Clear() error
}

// MemoryStore is an in-memory Store. Used in tests and as the fallback when
// no session file path is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
	set    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current token pair and whether one is set.
func (s *MemoryStore) Get() (Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.set
}

// Set replaces the stored token pair.
func (s *MemoryStore) Set(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	s.set = true
	return nil
}

// Clear removes the stored token pair.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.set = false
	return nil
}

// FileStore persists the token pair as JSON on disk so a session survives
// process restarts. Reads are served from memory after the initial load.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	tokens Tokens
	set    bool
}

// NewFileStore creates a file-backed store and loads any existing session
// from disk. A missing or unreadable session file means starting logged out.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}
	_ = s.load()
	return s
}

// DefaultSessionPath returns the default location of the session file.
func DefaultSessionPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tradegate", "session.json")
}

// Get returns the current token pair and whether one is set.
func (s *FileStore) Get() (Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.set
}

// Set replaces the stored token pair and persists it to disk.
func (s *FileStore) Set(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	s.set = true
	return s.save()
}

// Clear removes the token pair from memory and deletes the session file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.set = false
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		return fmt.Errorf("session file missing tokens")
	}
	s.tokens = tokens
	s.set = true
	return nil
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
