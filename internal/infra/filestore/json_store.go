package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

const (
	lockRetry = 50 * time.Millisecond
	lockWait  = 5 * time.Second
	debounce  = 100 * time.Millisecond
)

// JSONStore keeps every key in one JSON object file. Several processes may
// share the file; writes hold an flock on "<path>.lock" and replace the file
// atomically.
type JSONStore struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger

	mu          sync.Mutex
	lastWritten []byte
}

func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{
		path:   filepath.Clean(path),
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	data, err := s.readLocked()
	if err != nil {
		return nil, false, err
	}
	raw, ok := data[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(raw), true, nil
}

// PutMany merges entries into the file and writes it back in one rename.
func (s *JSONStore) PutMany(ctx context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := s.readLocked()
	if err != nil {
		return err
	}
	for k, v := range entries {
		if !json.Valid(v) {
			return fmt.Errorf("value for %q is not valid JSON", k)
		}
		data[k] = json.RawMessage(v)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := s.writeAtomic(out); err != nil {
		return err
	}
	s.lastWritten = out
	return nil
}

// Ping checks that the directory holding the file is reachable.
func (s *JSONStore) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *JSONStore) Close() error {
	return s.lock.Close()
}

// Watch calls onChange, debounced, whenever another writer replaces the
// file. Writes made through this JSONStore are ignored. The watcher stops
// when ctx is done.
func (s *JSONStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: a rename replaces the inode a file watch would follow.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if s.changedExternally() {
						s.logger.Debug("store file changed on disk", "path", s.path)
						onChange()
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("fsnotify error", "path", s.path, "error", err)
			}
		}
	}()

	return nil
}

func (s *JSONStore) changedExternally() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return !bytes.Equal(current, s.lastWritten)
}

func (s *JSONStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	var locked bool
	var err error
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, lockRetry)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, lockRetry)
	}
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: timed out", s.path)
	}
	return func() { _ = s.lock.Unlock() }, nil
}

func (s *JSONStore) readLocked() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return data, nil
}

func (s *JSONStore) writeAtomic(content []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename into %s: %w", s.path, err)
	}
	return nil
}
