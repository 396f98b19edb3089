// Package auth validates client credentials.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// ErrInvalidCredentials is returned when no credential matches the supplied
// username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credential is one entry of the credential table.
type Credential struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// Store holds the credential table: built-in demo entries plus an optional
// JSON file that can be hot-reloaded while the hub is running.
type Store struct {
	mu       sync.RWMutex
	creds    map[string]Credential
	path     string
	defaults bool
}

// NewStore builds the store from the given options. When a credentials file
// is configured it is loaded eagerly so a broken file fails startup instead
// of the first login.
func NewStore(opts *options.AuthOptions) (*Store, error) {
	s := &Store{
		creds: make(map[string]Credential),
	}
	if opts != nil {
		s.path = opts.CredentialsFile
	}
	s.defaults = opts == nil || !opts.DisableDefaults

	if err := s.reload(s.defaults); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup validates the pair and returns the granted role.
func (s *Store) Lookup(username, password string) (model.Role, error) {
	s.mu.RLock()
	cred, ok := s.creds[username]
	s.mu.RUnlock()

	if !ok {
		return model.RoleUnauthenticated, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(cred.Password), []byte(password)) != 1 {
		return model.RoleUnauthenticated, ErrInvalidCredentials
	}
	return cred.Role, nil
}

// Watch reloads the credentials file whenever it changes. It blocks until
// the context is cancelled. Calling Watch without a configured file is an
// error; the caller decides whether to start it.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return errors.New("no credentials file configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create credentials watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files instead of writing in place,
	// which would silently drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch credentials directory: %w", err)
	}

	log.Info("Watching credentials file", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(s.defaults); err != nil {
				log.Error(err, "Failed to reload credentials, keeping previous table")
				continue
			}
			log.Info("Credentials reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "Credentials watcher error")
		}
	}
}

// reload rebuilds the table from defaults plus the configured file and swaps
// it in atomically. A file entry for a default username overrides it.
func (s *Store) reload(includeDefaults bool) error {
	next := make(map[string]Credential)

	if includeDefaults {
		for _, c := range defaultCredentials() {
			next[c.Username] = c
		}
	}

	if s.path != "" {
		fileCreds, err := loadFile(s.path)
		if err != nil {
			return err
		}
		for _, c := range fileCreds {
			next[c.Username] = c
		}
	}

	s.mu.Lock()
	s.creds = next
	s.mu.Unlock()
	return nil
}

func loadFile(path string) ([]Credential, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds []Credential
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	for i, c := range creds {
		if c.Username == "" || c.Password == "" {
			return nil, fmt.Errorf("credentials entry %d: username and password are required", i)
		}
		role := model.Role(strings.ToUpper(string(c.Role)))
		if role != model.RoleAdmin && role != model.RoleObserver {
			return nil, fmt.Errorf("credentials entry %d: unknown role %q", i, c.Role)
		}
		creds[i].Role = role
	}
	return creds, nil
}

// defaultCredentials is the built-in demo table.
func defaultCredentials() []Credential {
	return []Credential{
		{Username: "admin", Password: "admin123", Role: model.RoleAdmin},
		{Username: "observer", Password: "observer123", Role: model.RoleObserver},
	}
}
