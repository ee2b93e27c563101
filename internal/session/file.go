// SPDX-License-Identifier: MIT

package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/ronittamrakar/xordon-go/internal/log"
)

// fileStore persists the session as a single JSON document. Writes are atomic
// (write-to-temp + rename) so a crash never leaves a torn session file, and a
// watcher picks up writes from other processes (e.g. a second CLI logging in).
type fileStore struct {
	path    string
	mu      sync.RWMutex
	values  map[string]string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
}

// NewFileStore opens (or creates the directory for) the session file at path.
func NewFileStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	s := &fileStore{
		path:   path,
		values: make(map[string]string),
		logger: log.WithComponent("session"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	s.watch()
	return s, nil
}

func (s *fileStore) load() error {
	data, err := os.ReadFile(s.path) // #nosec G304 -- path resolved from config
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt session file is not fatal; start over.
		s.logger.Warn().Err(err).Str("path", s.path).Msg("discarding unreadable session file")
		return nil
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// watch reloads the document when another process rewrites it. Best effort:
// a failed watcher only disables cross-process refresh.
func (s *fileStore) watch() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Debug().Err(err).Msg("session watcher unavailable")
		return
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		s.logger.Debug().Err(err).Msg("session watcher unavailable")
		_ = w.Close()
		return
	}
	s.watcher = w
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == s.path && ev.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					if err := s.load(); err != nil {
						s.logger.Warn().Err(err).Msg("session reload failed")
					}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
}

func (s *fileStore) flushLocked() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		s.logger.Error().Err(err).Msg("session marshal failed")
		return
	}
	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("session write failed")
	}
}

func (s *fileStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *fileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.flushLocked()
}

func (s *fileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.flushLocked()
}

func (s *fileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	s.flushLocked()
}

// Close stops the file watcher.
func (s *fileStore) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
