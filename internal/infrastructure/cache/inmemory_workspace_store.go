package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fuelops/backend/internal/domain/fuel"
)

type workspaceEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryWorkspaceStore keeps workspaces in process memory with a TTL.
// It suits single-instance deployments and tests.
type InMemoryWorkspaceStore struct {
	ttl             time.Duration
	cleanupInterval time.Duration

	mu        sync.RWMutex
	entries   map[string]workspaceEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryWorkspaceStore
type InMemoryOption func(*InMemoryWorkspaceStore)

// WithCleanupInterval sets how often expired workspaces are evicted
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(s *InMemoryWorkspaceStore) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

// NewInMemoryWorkspaceStore creates the store and starts its cleanup goroutine.
// A non-positive ttl keeps workspaces until deleted.
func NewInMemoryWorkspaceStore(ttl time.Duration, opts ...InMemoryOption) *InMemoryWorkspaceStore {
	s := &InMemoryWorkspaceStore{
		ttl:             ttl,
		cleanupInterval: 5 * time.Minute,
		entries:         make(map[string]workspaceEntry),
		stopChan:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Get returns a copy of the stored workspace
func (s *InMemoryWorkspaceStore) Get(ctx context.Context, id string) (*fuel.Workspace, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || s.expired(e, time.Now()) {
		return nil, fuel.ErrWorkspaceNotFound
	}
	return decodeWorkspace(e.data)
}

// Put replaces the workspace in a single step
func (s *InMemoryWorkspaceStore) Put(ctx context.Context, ws *fuel.Workspace) error {
	data, err := encodeWorkspace(ws)
	if err != nil {
		return err
	}

	e := workspaceEntry{data: data}
	if s.ttl > 0 {
		e.expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[ws.ID] = e
	s.mu.Unlock()
	return nil
}

// Delete removes the workspace; unknown ids are ignored
func (s *InMemoryWorkspaceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryWorkspaceStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (s *InMemoryWorkspaceStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryWorkspaceStore) expired(e workspaceEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (s *InMemoryWorkspaceStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryWorkspaceStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
		}
	}
}

var _ ClosableWorkspaceStore = (*InMemoryWorkspaceStore)(nil)
