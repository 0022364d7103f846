// Package filestore keeps uploaded files on local disk behind short-lived
// preview handles.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrReleased = errors.New("file handle released")
	ErrNotFound = errors.New("file handle not found")
)

type Info struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type Handle struct {
	ID   string `json:"id"`
	Info Info   `json:"info"`

	path     string
	store    *Store
	released atomic.Bool
}

type Store struct {
	dir     string
	mu      sync.Mutex
	handles map[string]*Handle
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, handles: make(map[string]*Handle)}, nil
}

// Put copies r to disk. An empty or generic content type is replaced by the
// sniffed one.
func (s *Store) Put(name, contentType string, r io.Reader) (*Handle, error) {
	id := uuid.NewString()
	path := filepath.Join(s.dir, id)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}

	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		mt, err := mimetype.DetectFile(path)
		if err == nil {
			contentType = mt.String()
		}
	}

	h := &Handle{
		ID:    id,
		Info:  Info{Name: filepath.Base(name), Size: size, Type: contentType},
		path:  path,
		store: s,
	}
	s.mu.Lock()
	s.handles[id] = h
	s.mu.Unlock()
	return h, nil
}

func (s *Store) Get(id string) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

// Len reports the number of live handles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (h *Handle) Open() (*os.File, error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	return os.Open(h.path)
}

func (h *Handle) Released() bool {
	return h.released.Load()
}

// Release deletes the backing file. Calling it again is a no-op.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return nil
	}
	h.store.mu.Lock()
	delete(h.store.handles, h.ID)
	h.store.mu.Unlock()
	if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
