package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nearbuy/backend/internal/domain"
)

// SavedSearchService persists completed search sessions for later reload
type SavedSearchService struct {
	searches domain.SavedSearchRepository
}

// NewSavedSearchService creates a saved-search service
func NewSavedSearchService(searches domain.SavedSearchRepository) *SavedSearchService {
	return &SavedSearchService{searches: searches}
}

// Save stores a deep copy of the search so the record stays independent of
// any live session the results came from, assigning it an id and timestamp.
// Nameless or empty searches are rejected.
func (s *SavedSearchService) Save(ctx context.Context, search domain.SavedSearch) (domain.SavedSearch, error) {
	if strings.TrimSpace(search.Name) == "" || len(search.Results) == 0 {
		return domain.SavedSearch{}, domain.ErrInvalidRequest
	}
	if search.SearchType != domain.SearchTypeShopping && search.SearchType != domain.SearchTypeGas {
		return domain.SavedSearch{}, domain.ErrInvalidRequest
	}

	if search.ID == "" {
		search.ID = uuid.NewString()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now()
	}
	search.Results = domain.CloneResults(search.Results)
	if err := s.searches.SaveSearch(ctx, search); err != nil {
		return domain.SavedSearch{}, err
	}
	return search, nil
}

// Searches returns all saved searches, newest first
func (s *SavedSearchService) Searches(ctx context.Context) ([]domain.SavedSearch, error) {
	return s.searches.Searches(ctx)
}

// Delete removes a saved search by id
func (s *SavedSearchService) Delete(ctx context.Context, id string) error {
	return s.searches.DeleteSearch(ctx, id)
}
