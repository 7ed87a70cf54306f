package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nearbuy/backend/internal/domain"
)

// ListService drafts shopping lists with the AI and manages saved lists
type ListService struct {
	client domain.GenerativeClient
	lists  domain.SavedListRepository
}

// NewListService creates a list service
func NewListService(client domain.GenerativeClient, lists domain.SavedListRepository) *ListService {
	return &ListService{client: client, lists: lists}
}

// GenerateList asks the AI to draft a shopping list from a free-text request
// ("taco night for four") and normalizes the response into plain list lines.
func (s *ListService) GenerateList(ctx context.Context, request string) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", domain.ErrInvalidRequest
	}

	raw, err := s.client.GenerateList(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStreamFailed, err)
	}
	return CleanShoppingList(raw), nil
}

// Save persists a named list, assigning it an id and timestamp. Blank names
// and empty lists are rejected.
func (s *ListService) Save(ctx context.Context, list domain.SavedList) (domain.SavedList, error) {
	if strings.TrimSpace(list.Name) == "" || strings.TrimSpace(list.Content) == "" {
		return domain.SavedList{}, domain.ErrInvalidRequest
	}
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now()
	}
	if err := s.lists.SaveList(ctx, list); err != nil {
		return domain.SavedList{}, err
	}
	return list, nil
}

// Lists returns all saved lists
func (s *ListService) Lists(ctx context.Context) ([]domain.SavedList, error) {
	return s.lists.Lists(ctx)
}

// Delete removes a saved list by id
func (s *ListService) Delete(ctx context.Context, id string) error {
	return s.lists.DeleteList(ctx, id)
}
