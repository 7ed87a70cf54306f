package usecase

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nearbuy/backend/internal/domain"
)

// SortOption selects the result ordering
type SortOption string

const (
	SortBySubtotal SortOption = "subtotal"
	SortByDistance SortOption = "distance"
	SortByReviews  SortOption = "reviews"
	SortByGasPrice SortOption = "gas_price"
)

// SortResults returns a sorted copy of the result set. Subtotal and gas
// price sorts float the matching variant to the front; distance and reviews
// parse the leading number out of the free-text fields.
func SortResults(results []domain.SearchResult, option SortOption) []domain.SearchResult {
	sorted := append([]domain.SearchResult(nil), results...)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch option {
		case SortBySubtotal:
			storeA, okA := a.(domain.Store)
			storeB, okB := b.(domain.Store)
			if okA && okB {
				return storeA.Subtotal < storeB.Subtotal
			}
			return okA && !okB
		case SortByGasPrice:
			gasA, okA := a.(domain.GasStation)
			gasB, okB := b.(domain.GasStation)
			if okA && okB {
				return regularPrice(gasA) < regularPrice(gasB)
			}
			return okA && !okB
		case SortByDistance:
			return leadingFloat(a.ResultDistance(), math.MaxFloat64) < leadingFloat(b.ResultDistance(), math.MaxFloat64)
		case SortByReviews:
			// higher rating first; unparseable ratings sort last
			return leadingFloat(a.ResultReviews(), 0) > leadingFloat(b.ResultReviews(), 0)
		}
		return false
	})
	return sorted
}

// regularPrice returns the station's Regular-grade price, or +Inf when the
// station doesn't list one.
func regularPrice(station domain.GasStation) float64 {
	for _, price := range station.Prices {
		if strings.EqualFold(price.Grade, "regular") {
			return price.Price
		}
	}
	return math.Inf(1)
}

// leadingFloat parses the leading number of a free-text field like
// "1.2 miles" or "4.5 stars (1,234 reviews)".
func leadingFloat(s string, fallback float64) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return fallback
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fallback
	}
	return value
}

// SwapItem moves an item wholesale from one store to another, recomputing
// both subtotals. Stores left with zero items are dropped from the result
// set (a store without items is not a valid result). The input slice is
// never mutated; a new result set is returned.
func SwapItem(results []domain.SearchResult, fromStore, toStore string, item domain.Item) []domain.SearchResult {
	swapped := make([]domain.SearchResult, 0, len(results))
	for _, result := range results {
		store, ok := result.(domain.Store)
		if !ok {
			swapped = append(swapped, result)
			continue
		}

		switch store.Name {
		case toStore:
			store = store.WithItems(append(append([]domain.Item(nil), store.Items...), item))
		case fromStore:
			var kept []domain.Item
			for _, existing := range store.Items {
				if !strings.EqualFold(existing.Name, item.Name) {
					kept = append(kept, existing)
				}
			}
			store = store.WithItems(kept)
		}

		if len(store.Items) > 0 {
			swapped = append(swapped, store)
		}
	}
	return swapped
}

// RemoveStore drops every result with the given name
func RemoveStore(results []domain.SearchResult, name string) []domain.SearchResult {
	kept := make([]domain.SearchResult, 0, len(results))
	for _, result := range results {
		if result.ResultName() != name {
			kept = append(kept, result)
		}
	}
	return kept
}

// StoresOnly filters the result set down to its store variants
func StoresOnly(results []domain.SearchResult) []domain.Store {
	var stores []domain.Store
	for _, result := range results {
		if store, ok := result.(domain.Store); ok {
			stores = append(stores, store)
		}
	}
	return stores
}

// ToggleRouteItem adds the item to (or removes it from) the named stop of a
// user-composed route. Stops left empty disappear. Returns a new stop list.
func ToggleRouteItem(stops []domain.RouteStop, storeName, itemName string) []domain.RouteStop {
	toggled := cloneStops(stops)

	idx := stopIndex(toggled, storeName)
	if idx < 0 {
		toggled = append(toggled, domain.RouteStop{StoreName: storeName, ItemsToBuy: []string{itemName}})
		return toggled
	}

	stop := &toggled[idx]
	for i, existing := range stop.ItemsToBuy {
		if strings.EqualFold(existing, itemName) {
			stop.ItemsToBuy = append(stop.ItemsToBuy[:i], stop.ItemsToBuy[i+1:]...)
			return dropEmptyStops(toggled)
		}
	}
	stop.ItemsToBuy = append(stop.ItemsToBuy, itemName)
	return toggled
}

// ToggleAllRouteItems selects every one of the store's items at its stop, or
// clears the stop if all of them were already selected.
func ToggleAllRouteItems(stops []domain.RouteStop, storeName string, items []domain.Item) []domain.RouteStop {
	toggled := cloneStops(stops)

	names := make([]string, len(items))
	selected := make(map[string]bool)
	for i, item := range items {
		names[i] = item.Name
		selected[strings.ToLower(item.Name)] = false
	}

	idx := stopIndex(toggled, storeName)
	if idx >= 0 {
		for _, existing := range toggled[idx].ItemsToBuy {
			key := strings.ToLower(existing)
			if _, wanted := selected[key]; wanted {
				selected[key] = true
			}
		}
	}

	allSelected := len(items) > 0 && idx >= 0
	if allSelected {
		for _, have := range selected {
			if !have {
				allSelected = false
				break
			}
		}
	}

	switch {
	case allSelected:
		toggled[idx].ItemsToBuy = nil
	case idx >= 0:
		toggled[idx].ItemsToBuy = names
	default:
		toggled = append(toggled, domain.RouteStop{StoreName: storeName, ItemsToBuy: names})
	}
	return dropEmptyStops(toggled)
}

// StopSubtotal prices the named items at a store; items the store doesn't
// carry contribute nothing.
func StopSubtotal(store domain.Store, itemNames []string) float64 {
	var total float64
	for _, name := range itemNames {
		for _, item := range store.Items {
			if strings.EqualFold(item.Name, name) {
				total += item.Price
				break
			}
		}
	}
	return total
}

// RouteCost totals a stop list against the current result set
func RouteCost(stops []domain.RouteStop, results []domain.SearchResult) float64 {
	stores := StoresOnly(results)
	var total float64
	for _, stop := range stops {
		for _, store := range stores {
			if store.Name == stop.StoreName {
				total += StopSubtotal(store, stop.ItemsToBuy)
				break
			}
		}
	}
	return total
}

// FinalizeCustomRoute turns a user-composed stop list into a route. The
// distance estimate is meaningless for a hand-built route.
func FinalizeCustomRoute(stops []domain.RouteStop, results []domain.SearchResult) (*domain.OptimalRoute, error) {
	stops = dropEmptyStops(cloneStops(stops))
	if len(stops) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	return &domain.OptimalRoute{
		Stops:         stops,
		TotalCost:     RouteCost(stops, results),
		TotalDistance: "Custom Route",
		IsModified:    true,
	}, nil
}

// SwapRouteStore replaces one stop's store with another, adjusting the route
// total by the cost difference of buying that stop's items at the new store.
// The returned route is marked modified and its distance estimate discarded.
func SwapRouteStore(
	route domain.OptimalRoute,
	results []domain.SearchResult,
	originalStore string,
	newStore domain.Store,
	itemsToBuy []string,
) domain.OptimalRoute {
	swapped := route.Clone()

	var originalCost float64
	for _, store := range StoresOnly(results) {
		if store.Name == originalStore {
			originalCost = StopSubtotal(store, itemsToBuy)
			break
		}
	}

	swapped.TotalCost += StopSubtotal(newStore, itemsToBuy) - originalCost
	for i, stop := range swapped.Stops {
		if stop.StoreName == originalStore {
			swapped.Stops[i].StoreName = newStore.Name
		}
	}
	swapped.TotalDistance = "Manually Modified"
	swapped.IsModified = true
	return swapped
}

func cloneStops(stops []domain.RouteStop) []domain.RouteStop {
	cloned := make([]domain.RouteStop, len(stops))
	for i, stop := range stops {
		stop.ItemsToBuy = append([]string(nil), stop.ItemsToBuy...)
		cloned[i] = stop
	}
	return cloned
}

func stopIndex(stops []domain.RouteStop, storeName string) int {
	for i, stop := range stops {
		if stop.StoreName == storeName {
			return i
		}
	}
	return -1
}

func dropEmptyStops(stops []domain.RouteStop) []domain.RouteStop {
	kept := stops[:0]
	for _, stop := range stops {
		if len(stop.ItemsToBuy) > 0 {
			kept = append(kept, stop)
		}
	}
	return kept
}
