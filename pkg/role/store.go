package role

import (
	"context"
	"fmt"
	"sync"

	"legalai-be/internal/pkg/logger"
)

// Storage is the durable key-value backend behind the store.
// Get must return found=false, err=nil for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Change is delivered to observers after a successful Set.
type Change struct {
	Subject string
	From    Role
	To      Role
	Landing string
}

// Observer reacts to role changes. Observers run synchronously in Set, in subscription order.
type Observer func(ctx context.Context, change Change)

// Store is the single writer for every subject's active role.
type Store struct {
	storage Storage
	logger  logger.ILogger

	mu        sync.RWMutex
	current   map[string]Role
	observers []Observer
}

func NewStore(storage Storage, logger logger.ILogger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		current: make(map[string]Role),
	}
}

func storageKey(subject string) string {
	return "role:" + subject
}

// Subscribe registers an observer. There is no unsubscribe; observers live as long as the store.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Get never fails. Missing or unknown persisted values resolve to Fallback; unknown
// values are logged and discarded. A storage error falls back to the last value this
// process wrote for the subject.
func (s *Store) Get(ctx context.Context, subject string) Role {
	raw, found, err := s.storage.Get(ctx, storageKey(subject))
	if err != nil {
		s.logger.Warn("RoleStore", "Role storage read failed", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
		s.mu.RLock()
		cached, ok := s.current[subject]
		s.mu.RUnlock()
		if ok {
			return cached
		}
		return Fallback
	}
	if !found {
		return Fallback
	}

	r, err := Parse(raw)
	if err != nil {
		s.logger.Warn("RoleStore", "Discarding invalid persisted role", map[string]interface{}{
			"subject": subject,
			"value":   raw,
		})
		return Fallback
	}
	return r
}

// Set validates and persists r, then updates memory and notifies observers.
// On a storage error nothing changes in memory and no observer runs.
// The returned path is the landing page for r.
func (s *Store) Set(ctx context.Context, subject string, r Role) (string, error) {
	canonical, err := Parse(string(r))
	if err != nil {
		return "", fmt.Errorf("set role %q: %w", r, err)
	}

	previous := s.Get(ctx, subject)

	if err := s.storage.Set(ctx, storageKey(subject), string(canonical)); err != nil {
		s.logger.Error("RoleStore", "Role persistence failed, change aborted", map[string]interface{}{
			"subject": subject,
			"role":    canonical,
			"error":   err.Error(),
		})
		return "", fmt.Errorf("persist role: %w", err)
	}

	s.mu.Lock()
	s.current[subject] = canonical
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	change := Change{
		Subject: subject,
		From:    previous,
		To:      canonical,
		Landing: DefaultPath(canonical),
	}
	for _, o := range observers {
		o(ctx, change)
	}

	s.logger.Info("RoleStore", "Role changed", map[string]interface{}{
		"subject": subject,
		"from":    previous,
		"to":      canonical,
	})

	return change.Landing, nil
}
