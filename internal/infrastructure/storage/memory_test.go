package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbuy/backend/internal/domain"
)

func TestMemoryStore_Lists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveList(ctx, domain.SavedList{
		ID: "b", Name: "Second", CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.SaveList(ctx, domain.SavedList{
		ID: "a", Name: "First", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	lists, err := store.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "First", lists[0].Name)
	assert.Equal(t, "Second", lists[1].Name)

	require.NoError(t, store.DeleteList(ctx, "a"))
	assert.ErrorIs(t, store.DeleteList(ctx, "a"), domain.ErrNotFound)
}

func TestMemoryStore_Searches(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	results := []domain.SearchResult{
		domain.Store{
			Type:  domain.ResultTypeStore,
			Name:  "Aldi",
			Items: []domain.Item{{Name: "Milk", Price: 2.49}},
		},
	}
	require.NoError(t, store.SaveSearch(ctx, domain.SavedSearch{
		ID: "old", Name: "old", SearchType: domain.SearchTypeShopping, Results: results,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.SaveSearch(ctx, domain.SavedSearch{
		ID: "new", Name: "new", SearchType: domain.SearchTypeShopping, Results: results,
		CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}))

	searches, err := store.Searches(ctx)
	require.NoError(t, err)
	require.Len(t, searches, 2)
	assert.Equal(t, "new", searches[0].ID)

	// the stored record must not alias the caller's items
	caller := results[0].(domain.Store)
	caller.Items[0].Name = "MUTATED"
	searches, err = store.Searches(ctx)
	require.NoError(t, err)
	stored := searches[0].Results[0].(domain.Store)
	assert.Equal(t, "Milk", stored.Items[0].Name)

	require.NoError(t, store.DeleteSearch(ctx, "old"))
	assert.ErrorIs(t, store.DeleteSearch(ctx, "old"), domain.ErrNotFound)
}
