package domain

import (
	"encoding/json"
	"fmt"
)

// Result type discriminators used in the "type" JSON field
const (
	ResultTypeStore = "store"
	ResultTypeGas   = "gas"
)

// Item is a single shopping-list item found at a store
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Store represents one store discovered during a shopping search, with the
// items found there and the AI-reported subtotal. Distance and Reviews are
// free-text as reported (e.g. "1.2 miles", "4.5 stars (1,234 reviews)").
type Store struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Distance string  `json:"distance"`
	Reviews  string  `json:"reviews"`
	URL      string  `json:"url"`
	Items    []Item  `json:"items"`
	Subtotal float64 `json:"subtotal"`
}

// GasPrice is one fuel grade with its price per gallon
type GasPrice struct {
	Grade string  `json:"grade"` // commonly Regular, Mid-grade, Premium, Diesel
	Price float64 `json:"price"`
}

// GasStation represents one gas station discovered during a gas-price search
type GasStation struct {
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	Distance string     `json:"distance"`
	Reviews  string     `json:"reviews"`
	URL      string     `json:"url"`
	Prices   []GasPrice `json:"prices"`
}

// SearchResult is the tagged union over Store and GasStation. Code that only
// needs the shape-independent fields (name, address, url) works against this
// interface; price semantics stay on the concrete types.
type SearchResult interface {
	ResultType() string
	ResultName() string
	ResultAddress() string
	ResultDistance() string
	ResultReviews() string
	SourceURL() string
	// WithSourceURL returns a copy of the result with the source URL set.
	WithSourceURL(url string) SearchResult
	// Clone returns a deep, independent copy
	Clone() SearchResult
}

func (s Store) ResultType() string     { return ResultTypeStore }
func (s Store) ResultName() string     { return s.Name }
func (s Store) ResultAddress() string  { return s.Address }
func (s Store) ResultDistance() string { return s.Distance }
func (s Store) ResultReviews() string  { return s.Reviews }
func (s Store) SourceURL() string      { return s.URL }

func (s Store) WithSourceURL(url string) SearchResult {
	s.URL = url
	return s
}

func (s Store) Clone() SearchResult {
	s.Items = append([]Item(nil), s.Items...)
	return s
}

// WithItems returns a copy of the store holding the given items with the
// subtotal recomputed. Any client-side item mutation must go through this so
// the subtotal invariant holds; the AI-supplied subtotal is authoritative
// only at parse time.
func (s Store) WithItems(items []Item) Store {
	s.Items = append([]Item(nil), items...)
	s.Subtotal = 0
	for _, item := range s.Items {
		s.Subtotal += item.Price
	}
	return s
}

func (g GasStation) ResultType() string     { return ResultTypeGas }
func (g GasStation) ResultName() string     { return g.Name }
func (g GasStation) ResultAddress() string  { return g.Address }
func (g GasStation) ResultDistance() string { return g.Distance }
func (g GasStation) ResultReviews() string  { return g.Reviews }
func (g GasStation) SourceURL() string      { return g.URL }

func (g GasStation) WithSourceURL(url string) SearchResult {
	g.URL = url
	return g
}

func (g GasStation) Clone() SearchResult {
	g.Prices = append([]GasPrice(nil), g.Prices...)
	return g
}

// CloneResults deep-copies a result slice so saved searches and edited result
// sets never alias live session state.
func CloneResults(results []SearchResult) []SearchResult {
	if results == nil {
		return nil
	}
	cloned := make([]SearchResult, len(results))
	for i, r := range results {
		cloned[i] = r.Clone()
	}
	return cloned
}

// UnmarshalSearchResults decodes a JSON array of search results, dispatching
// on each element's "type" field.
func UnmarshalSearchResults(data []byte) ([]SearchResult, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding result list: %w", err)
	}

	results := make([]SearchResult, 0, len(raws))
	for _, raw := range raws {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("probing result type: %w", err)
		}

		switch probe.Type {
		case ResultTypeStore:
			var store Store
			if err := json.Unmarshal(raw, &store); err != nil {
				return nil, fmt.Errorf("decoding store result: %w", err)
			}
			results = append(results, store)
		case ResultTypeGas:
			var station GasStation
			if err := json.Unmarshal(raw, &station); err != nil {
				return nil, fmt.Errorf("decoding gas result: %w", err)
			}
			results = append(results, station)
		default:
			return nil, fmt.Errorf("unknown result type %q", probe.Type)
		}
	}
	return results, nil
}
