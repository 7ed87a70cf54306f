package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/nearbuy/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory implementation of the saved-list
// and saved-search repositories, used when no database path is configured
// and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	lists    map[string]domain.SavedList
	searches map[string]domain.SavedSearch
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists:    make(map[string]domain.SavedList),
		searches: make(map[string]domain.SavedSearch),
	}
}

// SaveList stores a saved list
func (m *MemoryStore) SaveList(ctx context.Context, list domain.SavedList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[list.ID] = list
	return nil
}

// Lists returns all saved lists in creation order
func (m *MemoryStore) Lists(ctx context.Context) ([]domain.SavedList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lists := make([]domain.SavedList, 0, len(m.lists))
	for _, list := range m.lists {
		lists = append(lists, list)
	}
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].CreatedAt.Before(lists[j].CreatedAt)
	})
	return lists, nil
}

// DeleteList removes a saved list by id
func (m *MemoryStore) DeleteList(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lists[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.lists, id)
	return nil
}

// SaveSearch stores a saved search; results are deep-copied so the record
// stays independent of the caller's slice.
func (m *MemoryStore) SaveSearch(ctx context.Context, search domain.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	search.Results = domain.CloneResults(search.Results)
	m.searches[search.ID] = search
	return nil
}

// Searches returns all saved searches, newest first
func (m *MemoryStore) Searches(ctx context.Context) ([]domain.SavedSearch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	searches := make([]domain.SavedSearch, 0, len(m.searches))
	for _, search := range m.searches {
		search.Results = domain.CloneResults(search.Results)
		searches = append(searches, search)
	}
	sort.Slice(searches, func(i, j int) bool {
		return searches[i].CreatedAt.After(searches[j].CreatedAt)
	})
	return searches, nil
}

// DeleteSearch removes a saved search by id
func (m *MemoryStore) DeleteSearch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.searches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.searches, id)
	return nil
}

var _ interface {
	domain.SavedListRepository
	domain.SavedSearchRepository
} = (*MemoryStore)(nil)
