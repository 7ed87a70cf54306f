package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nearbuy/backend/internal/domain"
)

// RouteService asks the AI to compose the cheapest multi-stop trip covering
// the shopping list from the discovered stores. The optimization itself
// happens inside the model; this service only frames the request and parses
// the one JSON document that comes back.
type RouteService struct {
	client domain.GenerativeClient
}

// NewRouteService creates a route service backed by the given AI client
func NewRouteService(client domain.GenerativeClient) *RouteService {
	return &RouteService{client: client}
}

// GenerateRoute produces an optimal route over the store results. Requires
// at least two stores; a response that doesn't parse as JSON after stripping
// code fences is surfaced as an invalid-route error, not retried.
func (s *RouteService) GenerateRoute(
	ctx context.Context,
	results []domain.SearchResult,
	shoppingList string,
) (*domain.OptimalRoute, error) {
	stores := StoresOnly(results)
	if len(stores) < 2 {
		return nil, domain.ErrNotEnoughStores
	}

	raw, err := s.client.GenerateRoute(ctx, stores, shoppingList)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStreamFailed, err)
	}

	route, err := ParseRouteResponse(raw)
	if err != nil {
		return nil, err
	}
	return route, nil
}

// ParseRouteResponse decodes the model's route JSON. The model sometimes
// wraps the document in markdown code fences despite being told not to;
// strip them before parsing.
func ParseRouteResponse(raw string) (*domain.OptimalRoute, error) {
	text := StripCodeFences(raw)

	var route domain.OptimalRoute
	if err := json.Unmarshal([]byte(text), &route); err != nil {
		log.Printf("[ROUTE] unparseable route response: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRouteFormat, err)
	}
	return &route, nil
}

// StripCodeFences removes a single wrapping ``` or ```json fence pair
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
