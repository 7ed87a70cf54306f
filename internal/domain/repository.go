package domain

import "context"

// GenerativeClient defines the interface to the external generative-AI
// service. The streaming calls return a channel of fragments; the channel is
// closed when the stream ends, after a terminal fragment with Err set if the
// transport failed mid-stream.
type GenerativeClient interface {
	StreamShoppingOptions(ctx context.Context, shoppingList string, loc Location) (<-chan StreamFragment, error)
	StreamGasPrices(ctx context.Context, loc Location) (<-chan StreamFragment, error)
	// GenerateRoute returns the model's raw route response; the caller owns
	// parsing it into an OptimalRoute.
	GenerateRoute(ctx context.Context, stores []Store, shoppingList string) (string, error)
	GenerateList(ctx context.Context, request string) (string, error)
}

// SavedListRepository persists named shopping lists
type SavedListRepository interface {
	SaveList(ctx context.Context, list SavedList) error
	Lists(ctx context.Context) ([]SavedList, error)
	DeleteList(ctx context.Context, id string) error
}

// SavedSearchRepository persists completed search sessions
type SavedSearchRepository interface {
	SaveSearch(ctx context.Context, search SavedSearch) error
	Searches(ctx context.Context) ([]SavedSearch, error)
	DeleteSearch(ctx context.Context, id string) error
}
