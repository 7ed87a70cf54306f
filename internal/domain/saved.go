package domain

import (
	"encoding/json"
	"time"
)

// Search type discriminators
const (
	SearchTypeShopping = "shopping"
	SearchTypeGas      = "gas"
)

// SavedList is a named shopping list the user chose to keep
type SavedList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SavedSearch is a completed search session persisted for later reload: the
// original list, the final result set (a deep copy, independent of any live
// session) and the search type.
type SavedSearch struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	ShoppingList string         `json:"shoppingList"`
	Results      []SearchResult `json:"results"`
	SearchType   string         `json:"searchType"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// UnmarshalJSON decodes a saved search, dispatching the result union on the
// per-element "type" field.
func (s *SavedSearch) UnmarshalJSON(data []byte) error {
	type alias SavedSearch
	aux := struct {
		*alias
		Results json.RawMessage `json:"results"`
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Results) == 0 {
		s.Results = nil
		return nil
	}

	results, err := UnmarshalSearchResults(aux.Results)
	if err != nil {
		return err
	}
	s.Results = results
	return nil
}
