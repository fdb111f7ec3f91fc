package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Session owns the state shared across pipeline runs: the chunk store,
// the crawl cache and the manual stores registered per equipment.
// Components receive it at construction; nothing is held in package globals.
type Session struct {
	id    string
	store driven.ChunkStore
	cache driven.CrawlCache

	mu      sync.RWMutex
	manuals map[string][]string
}

// NewSession creates a session over a chunk store and crawl cache.
func NewSession(store driven.ChunkStore, cache driven.CrawlCache) *Session {
	return &Session{
		id:      uuid.NewString(),
		store:   store,
		cache:   cache,
		manuals: make(map[string][]string),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Store returns the session's chunk store.
func (s *Session) Store() driven.ChunkStore { return s.store }

// Cache returns the session's crawl cache.
func (s *Session) Cache() driven.CrawlCache { return s.cache }

// AddManual records a manual store for the equipment.
func (s *Session) AddManual(eq domain.EquipmentQuery, storeID string) {
	s.addManual(eq.Key(), storeID)
}

func (s *Session) addManual(key, storeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.manuals[key], storeID) {
		s.manuals[key] = append(s.manuals[key], storeID)
	}
}

// RestoreManuals records the manual stores already held by a persistent
// chunk store, so manuals registered by earlier runs join retrieval.
// It returns the number of manual stores found.
func (s *Session) RestoreManuals(ctx context.Context) (int, error) {
	stores, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing stores: %w", err)
	}
	n := 0
	for _, st := range stores {
		if st.Origin != domain.StoreOriginManual || st.EquipmentKey == "" {
			continue
		}
		s.addManual(st.EquipmentKey, st.ID)
		n++
	}
	return n, nil
}

// Manuals returns the manual stores registered for the equipment.
func (s *Session) Manuals(eq domain.EquipmentQuery) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.manuals[eq.Key()])
}

// newStoreSuffix returns a short random suffix for store identifiers.
func newStoreSuffix() string {
	return uuid.NewString()[:8]
}
