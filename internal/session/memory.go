package session

import (
	"context"
	"sync"
	"time"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

// MemoryStore keeps sessions in process memory. Each session carries its own
// mutex so concurrent updates to the same session serialize without blocking
// unrelated sessions. Sessions idle longer than ttl are evicted by a janitor
// goroutine.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memSession
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type memSession struct {
	mu   sync.Mutex
	data Session
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*memSession),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	id := NewSessionID()
	s.mu.Lock()
	s.sessions[id] = &memSession{data: Session{
		ID:            id,
		ExcludedLinks: []string{},
		UpdatedAt:     time.Now(),
	}}
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	ms, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := ms.data
	cp.ExcludedLinks = append([]string(nil), ms.data.ExcludedLinks...)
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, excludedLinks []string, query *models.StructuredQuery) error {
	s.mu.RLock()
	ms, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data.ExcludedLinks = mergeLinks(ms.data.ExcludedLinks, excludedLinks)
	if query != nil {
		q := *query
		ms.data.LastStructuredQuery = &q
	}
	ms.data.UpdatedAt = time.Now()
	return nil
}

// Close stops the eviction janitor.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) janitor() {
	interval := s.ttl / 4
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *MemoryStore) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ms := range s.sessions {
		ms.mu.Lock()
		expired := ms.data.UpdatedAt.Before(cutoff)
		ms.mu.Unlock()
		if expired {
			delete(s.sessions, id)
		}
	}
}
