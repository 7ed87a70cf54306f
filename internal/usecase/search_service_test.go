package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nearbuy/backend/internal/domain"
)

// fakeClient replays canned stream fragments and responses
type fakeClient struct {
	fragments    []domain.StreamFragment
	streamErr    error
	routeRaw     string
	routeErr     error
	listRaw      string
	listErr      error
	streamStarts int
}

func (f *fakeClient) stream() (<-chan domain.StreamFragment, error) {
	f.streamStarts++
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan domain.StreamFragment, len(f.fragments))
	for _, fragment := range f.fragments {
		ch <- fragment
	}
	close(ch)
	return ch, nil
}

func (f *fakeClient) StreamShoppingOptions(ctx context.Context, shoppingList string, loc domain.Location) (<-chan domain.StreamFragment, error) {
	return f.stream()
}

func (f *fakeClient) StreamGasPrices(ctx context.Context, loc domain.Location) (<-chan domain.StreamFragment, error) {
	return f.stream()
}

func (f *fakeClient) GenerateRoute(ctx context.Context, stores []domain.Store, shoppingList string) (string, error) {
	return f.routeRaw, f.routeErr
}

func (f *fakeClient) GenerateList(ctx context.Context, request string) (string, error) {
	return f.listRaw, f.listErr
}

// channelClient streams from a caller-owned channel, letting a test act
// as the producer.
type channelClient struct {
	ch chan domain.StreamFragment
}

func (c *channelClient) StreamShoppingOptions(context.Context, string, domain.Location) (<-chan domain.StreamFragment, error) {
	return c.ch, nil
}

func (c *channelClient) StreamGasPrices(context.Context, domain.Location) (<-chan domain.StreamFragment, error) {
	return c.ch, nil
}

func (c *channelClient) GenerateRoute(context.Context, []domain.Store, string) (string, error) {
	return "", nil
}

func (c *channelClient) GenerateList(context.Context, string) (string, error) {
	return "", nil
}

func textFragments(pieces ...string) []domain.StreamFragment {
	var fragments []domain.StreamFragment
	for _, p := range pieces {
		fragments = append(fragments, domain.StreamFragment{Text: p})
	}
	return fragments
}

var testLocation = domain.Location{Coords: &domain.Coordinates{Latitude: 37.77, Longitude: -122.42}}

const twoStoreStream = "### Trader Joe's\n**Address:** 123 Main St\n- Organic Milk: $3.99\n**Subtotal:** $3.99\n" +
	"### Safeway\n**Address:** 456 Oak Ave\n- Whole Milk: $4.49\n- Eggs: $5.99\n**Subtotal:** $10.48\n"

func TestShoppingSearch(t *testing.T) {
	t.Run("delivers stores in discovery order", func(t *testing.T) {
		client := &fakeClient{fragments: textFragments(twoStoreStream)}
		svc := NewSearchService(client)

		var delivered []string
		outcome, err := svc.ShoppingSearch(context.Background(), "milk\neggs", testLocation, func(r domain.SearchResult) {
			delivered = append(delivered, r.ResultName())
		})
		if err != nil {
			t.Fatalf("ShoppingSearch: %v", err)
		}
		if len(delivered) != 2 || delivered[0] != "Trader Joe's" || delivered[1] != "Safeway" {
			t.Errorf("delivered = %v", delivered)
		}
		if len(outcome.Results) != 2 {
			t.Errorf("outcome.Results = %v", outcome.Results)
		}
		if len(outcome.MissingItems) != 0 {
			t.Errorf("MissingItems = %v, want none", outcome.MissingItems)
		}
	})

	t.Run("fragmentation does not change the outcome", func(t *testing.T) {
		whole := &fakeClient{fragments: textFragments(twoStoreStream)}
		svc := NewSearchService(whole)
		wantOutcome, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, nil)
		if err != nil {
			t.Fatalf("ShoppingSearch: %v", err)
		}

		for _, size := range []int{1, 3, 10, 50} {
			var pieces []string
			for i := 0; i < len(twoStoreStream); i += size {
				end := i + size
				if end > len(twoStoreStream) {
					end = len(twoStoreStream)
				}
				pieces = append(pieces, twoStoreStream[i:end])
			}
			svc := NewSearchService(&fakeClient{fragments: textFragments(pieces...)})
			outcome, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, nil)
			if err != nil {
				t.Fatalf("fragment size %d: %v", size, err)
			}
			if len(outcome.Results) != len(wantOutcome.Results) {
				t.Errorf("fragment size %d: %d results, want %d", size, len(outcome.Results), len(wantOutcome.Results))
				continue
			}
			for i := range outcome.Results {
				if outcome.Results[i].ResultName() != wantOutcome.Results[i].ResultName() {
					t.Errorf("fragment size %d: result %d = %q, want %q",
						size, i, outcome.Results[i].ResultName(), wantOutcome.Results[i].ResultName())
				}
			}
		}
	})

	t.Run("trailing block without final delimiter is flushed", func(t *testing.T) {
		client := &fakeClient{fragments: textFragments("### Aldi\n- Milk: $2.49")}
		svc := NewSearchService(client)
		outcome, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, nil)
		if err != nil {
			t.Fatalf("ShoppingSearch: %v", err)
		}
		if len(outcome.Results) != 1 || outcome.Results[0].ResultName() != "Aldi" {
			t.Errorf("Results = %v", outcome.Results)
		}
	})

	t.Run("malformed blocks are dropped silently", func(t *testing.T) {
		stream := "### \n\n### Aldi\n- Milk: $2.49\n### Nameless prices only\nno dashes here\n"
		client := &fakeClient{fragments: textFragments(stream)}
		svc := NewSearchService(client)
		outcome, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, nil)
		if err != nil {
			t.Fatalf("ShoppingSearch: %v", err)
		}
		if len(outcome.Results) != 1 {
			t.Errorf("Results = %v, want just Aldi", outcome.Results)
		}
	})

	t.Run("reports missing items from the original list", func(t *testing.T) {
		client := &fakeClient{fragments: textFragments("### Aldi\n- Whole Milk: $2.49\n")}
		svc := NewSearchService(client)
		outcome, err := svc.ShoppingSearch(context.Background(), "- milk\n- 1 dozen eggs", testLocation, nil)
		if err != nil {
			t.Fatalf("ShoppingSearch: %v", err)
		}
		if len(outcome.MissingItems) != 1 || outcome.MissingItems[0] != "1 dozen eggs" {
			t.Errorf("MissingItems = %v", outcome.MissingItems)
		}
	})

	t.Run("attaches grounding URLs to results", func(t *testing.T) {
		client := &fakeClient{fragments: []domain.StreamFragment{
			{
				Text: "### Aldi\n- Milk: $2.49\n",
				Grounding: []domain.GroundingChunk{
					{Maps: &domain.GroundingSource{Title: "Aldi", URI: "https://maps.example/aldi"}},
				},
			},
		}}
		svc := NewSearchService(client)
		outcome, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, nil)
		if err != nil {
			t.Fatalf("ShoppingSearch: %v", err)
		}
		if got := outcome.Results[0].SourceURL(); got != "https://maps.example/aldi" {
			t.Errorf("SourceURL = %q", got)
		}
		if len(outcome.Grounding) != 1 {
			t.Errorf("Grounding = %v", outcome.Grounding)
		}
	})

	t.Run("empty list is rejected before streaming", func(t *testing.T) {
		client := &fakeClient{}
		svc := NewSearchService(client)
		_, err := svc.ShoppingSearch(context.Background(), "   ", testLocation, nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("err = %v, want ErrInvalidRequest", err)
		}
		if client.streamStarts != 0 {
			t.Error("stream was started for an invalid request")
		}
	})

	t.Run("missing location is rejected before streaming", func(t *testing.T) {
		svc := NewSearchService(&fakeClient{})
		_, err := svc.ShoppingSearch(context.Background(), "milk", domain.Location{}, nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("err = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("mid-stream failure keeps already delivered results", func(t *testing.T) {
		client := &fakeClient{fragments: []domain.StreamFragment{
			{Text: "### Aldi\n- Milk: $2.49\n### Safe"},
			{Err: errors.New("connection reset")},
		}}
		svc := NewSearchService(client)

		var delivered []string
		_, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, func(r domain.SearchResult) {
			delivered = append(delivered, r.ResultName())
		})
		if !errors.Is(err, domain.ErrStreamFailed) {
			t.Errorf("err = %v, want ErrStreamFailed", err)
		}
		if len(delivered) != 1 || delivered[0] != "Aldi" {
			t.Errorf("delivered = %v, want the result parsed before the failure", delivered)
		}
	})

	t.Run("stream start failure wraps ErrStreamFailed", func(t *testing.T) {
		svc := NewSearchService(&fakeClient{streamErr: errors.New("dial tcp: timeout")})
		_, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, nil)
		if !errors.Is(err, domain.ErrStreamFailed) {
			t.Errorf("err = %v, want ErrStreamFailed", err)
		}
	})

	t.Run("superseded session stops delivering", func(t *testing.T) {
		client := &fakeClient{fragments: textFragments(twoStoreStream)}
		svc := NewSearchService(client)

		var delivered int
		_, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, func(r domain.SearchResult) {
			delivered++
			// a newer search starting mid-stream supersedes this one
			svc.newSession()
		})
		if !errors.Is(err, domain.ErrSearchSuperseded) {
			t.Errorf("err = %v, want ErrSearchSuperseded", err)
		}
		if delivered != 1 {
			t.Errorf("delivered = %d results after being superseded, want 1", delivered)
		}
	})

	t.Run("abandoned stream is drained so the producer can finish", func(t *testing.T) {
		client := &channelClient{ch: make(chan domain.StreamFragment)}
		svc := NewSearchService(client)

		producerDone := make(chan struct{})
		go func() {
			defer close(producerDone)
			defer close(client.ch)
			client.ch <- domain.StreamFragment{Text: "### Aldi\n- Milk: $2.49\n### "}
			for i := 0; i < 50; i++ {
				client.ch <- domain.StreamFragment{Text: "Safeway\n- Milk: $2.99\n### "}
			}
		}()

		_, err := svc.ShoppingSearch(context.Background(), "milk", testLocation, func(domain.SearchResult) {
			svc.newSession()
		})
		if !errors.Is(err, domain.ErrSearchSuperseded) {
			t.Fatalf("err = %v, want ErrSearchSuperseded", err)
		}

		select {
		case <-producerDone:
		case <-time.After(3 * time.Second):
			t.Fatal("producer still blocked after the search was abandoned")
		}
	})
}

func TestGasSearch(t *testing.T) {
	t.Run("delivers gas stations", func(t *testing.T) {
		stream := "### Shell\n**Distance:** 0.4 miles\n- Regular: $3.459\n- Premium: $4.059\n### Chevron\n- Regular: $3.399\n"
		svc := NewSearchService(&fakeClient{fragments: textFragments(stream)})

		var delivered []string
		outcome, err := svc.GasSearch(context.Background(), testLocation, func(r domain.SearchResult) {
			delivered = append(delivered, r.ResultName())
		})
		if err != nil {
			t.Fatalf("GasSearch: %v", err)
		}
		if len(delivered) != 2 || delivered[0] != "Shell" {
			t.Errorf("delivered = %v", delivered)
		}
		station, ok := outcome.Results[0].(domain.GasStation)
		if !ok {
			t.Fatalf("Results[0] is %T, want GasStation", outcome.Results[0])
		}
		if len(station.Prices) != 2 || station.Prices[0].Price != 3.459 {
			t.Errorf("Prices = %+v", station.Prices)
		}
		if outcome.MissingItems != nil {
			t.Errorf("MissingItems = %v, want nil for gas", outcome.MissingItems)
		}
	})

	t.Run("missing location is rejected", func(t *testing.T) {
		svc := NewSearchService(&fakeClient{})
		_, err := svc.GasSearch(context.Background(), domain.Location{}, nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("err = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("free-text location is accepted", func(t *testing.T) {
		svc := NewSearchService(&fakeClient{fragments: textFragments("### Shell\n- Regular: $3.45\n")})
		outcome, err := svc.GasSearch(context.Background(), domain.Location{Query: "Springfield, IL"}, nil)
		if err != nil {
			t.Fatalf("GasSearch: %v", err)
		}
		if len(outcome.Results) != 1 {
			t.Errorf("Results = %v", outcome.Results)
		}
	})
}
