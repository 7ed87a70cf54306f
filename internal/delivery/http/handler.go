package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nearbuy/backend/internal/domain"
	"github.com/nearbuy/backend/internal/usecase"
)

// SearchRunner runs streaming searches, delivering each parsed entity to the
// callback as soon as it is available.
type SearchRunner interface {
	ShoppingSearch(ctx context.Context, shoppingList string, loc domain.Location, onResult func(domain.SearchResult)) (*usecase.SearchOutcome, error)
	GasSearch(ctx context.Context, loc domain.Location, onResult func(domain.SearchResult)) (*usecase.SearchOutcome, error)
}

// RouteGenerator composes a multi-stop route over store results
type RouteGenerator interface {
	GenerateRoute(ctx context.Context, results []domain.SearchResult, shoppingList string) (*domain.OptimalRoute, error)
}

// ListManager drafts and persists shopping lists
type ListManager interface {
	GenerateList(ctx context.Context, request string) (string, error)
	Save(ctx context.Context, list domain.SavedList) (domain.SavedList, error)
	Lists(ctx context.Context) ([]domain.SavedList, error)
	Delete(ctx context.Context, id string) error
}

// SearchArchive persists completed search sessions
type SearchArchive interface {
	Save(ctx context.Context, search domain.SavedSearch) (domain.SavedSearch, error)
	Searches(ctx context.Context) ([]domain.SavedSearch, error)
	Delete(ctx context.Context, id string) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search   SearchRunner
	routes   RouteGenerator
	lists    ListManager
	searches SearchArchive
}

// NewHandler creates a new HTTP handler
func NewHandler(search SearchRunner, routes RouteGenerator, lists ListManager, searches SearchArchive) *Handler {
	return &Handler{search: search, routes: routes, lists: lists, searches: searches}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nearbuy-backend",
		"version": "1.2.0",
	})
}

// searchRequest is the body of both streaming search endpoints. Either
// coordinates or a free-text location must be present; clients fall back to
// locationText when geolocation is denied or unavailable.
type searchRequest struct {
	ShoppingList string              `json:"shoppingList"`
	Coordinates  *domain.Coordinates `json:"coordinates"`
	LocationText string              `json:"locationText"`
}

func (r searchRequest) location() domain.Location {
	return domain.Location{Coords: r.Coordinates, Query: strings.TrimSpace(r.LocationText)}
}

// SearchShopping streams store options for a shopping list as server-sent
// events: one "result" event per store the moment its block parses, then a
// single "complete" event with the reconciled results and missing items. A
// mid-stream failure emits an "error" event; results already sent stand.
func (h *Handler) SearchShopping(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ShoppingList) == "" || req.location().IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shoppingList and a location (coordinates or locationText) are required"})
		return
	}

	setStreamHeaders(c)

	outcome, err := h.search.ShoppingSearch(c.Request.Context(), req.ShoppingList, req.location(), func(result domain.SearchResult) {
		c.SSEvent("result", result)
		c.Writer.Flush()
	})
	h.finishStream(c, outcome, err)
}

// SearchGas streams gas station prices near a location with the same event
// protocol as SearchShopping.
func (h *Handler) SearchGas(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.location().IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a location (coordinates or locationText) is required"})
		return
	}

	setStreamHeaders(c)

	outcome, err := h.search.GasSearch(c.Request.Context(), req.location(), func(result domain.SearchResult) {
		c.SSEvent("result", result)
		c.Writer.Flush()
	})
	h.finishStream(c, outcome, err)
}

func setStreamHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
}

func (h *Handler) finishStream(c *gin.Context, outcome *usecase.SearchOutcome, err error) {
	if err != nil {
		c.SSEvent("error", gin.H{"error": userMessage(err)})
		c.Writer.Flush()
		return
	}
	c.SSEvent("complete", outcome)
	c.Writer.Flush()
}

// routeRequest carries the client's current result set (as streamed to it)
// and the original shopping list.
type routeRequest struct {
	Results      json.RawMessage `json:"results"`
	ShoppingList string          `json:"shoppingList"`
}

// GenerateRoute composes the cheapest multi-stop trip over the given stores
func (h *Handler) GenerateRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := domain.UnmarshalSearchResults(req.Results)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid results payload"})
		return
	}

	route, err := h.routes.GenerateRoute(c.Request.Context(), results, req.ShoppingList)
	if err != nil {
		if errors.Is(err, domain.ErrNotEnoughStores) {
			c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": userMessage(err)})
		return
	}
	c.JSON(http.StatusOK, route)
}

// GenerateList drafts a shopping list from a free-text request
func (h *Handler) GenerateList(c *gin.Context) {
	var req struct {
		Request string `json:"request"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Request) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request text is required"})
		return
	}

	list, err := h.lists.GenerateList(c.Request.Context(), req.Request)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": userMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shoppingList": list})
}

// SaveList persists a named shopping list
func (h *Handler) SaveList(c *gin.Context) {
	var list domain.SavedList
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.lists.Save(c.Request.Context(), list)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and content are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save list"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// ListSavedLists returns all saved shopping lists
func (h *Handler) ListSavedLists(c *gin.Context) {
	lists, err := h.lists.Lists(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load lists"})
		return
	}
	c.JSON(http.StatusOK, lists)
}

// DeleteList removes a saved list
func (h *Handler) DeleteList(c *gin.Context) {
	if err := h.lists.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "list not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete list"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveSearch persists a completed search session
func (h *Handler) SaveSearch(c *gin.Context) {
	var req struct {
		Name         string          `json:"name"`
		ShoppingList string          `json:"shoppingList"`
		SearchType   string          `json:"searchType"`
		Results      json.RawMessage `json:"results"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := domain.UnmarshalSearchResults(req.Results)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid results payload"})
		return
	}

	saved, err := h.searches.Save(c.Request.Context(), domain.SavedSearch{
		Name:         req.Name,
		ShoppingList: req.ShoppingList,
		SearchType:   req.SearchType,
		Results:      results,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, searchType and at least one result are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save search"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// ListSavedSearches returns all saved searches, newest first
func (h *Handler) ListSavedSearches(c *gin.Context) {
	searches, err := h.searches.Searches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load searches"})
		return
	}
	c.JSON(http.StatusOK, searches)
}

// DeleteSearch removes a saved search
func (h *Handler) DeleteSearch(c *gin.Context) {
	if err := h.searches.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "search not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete search"})
		return
	}
	c.Status(http.StatusNoContent)
}

// userMessage maps domain sentinels to the message the client should show;
// everything else collapses to the generic fetch failure so internals don't
// leak.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRouteFormat):
		return domain.ErrInvalidRouteFormat.Error()
	case errors.Is(err, domain.ErrNotEnoughStores):
		return domain.ErrNotEnoughStores.Error()
	case errors.Is(err, domain.ErrMissingCredentials):
		return domain.ErrMissingCredentials.Error()
	case errors.Is(err, domain.ErrSearchSuperseded):
		return domain.ErrSearchSuperseded.Error()
	default:
		return domain.ErrStreamFailed.Error()
	}
}
