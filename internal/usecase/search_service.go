package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/nearbuy/backend/internal/domain"
)

// SearchService drives a live AI response stream through the block splitter
// and parser, delivering each entity to the caller the moment its block
// boundary is crossed, and reconciling the accumulated results once the
// stream ends.
//
// Each search runs as one sequential consumer loop: entities are delivered
// in strict discovery order and every delivery runs to completion before the
// next fragment is processed, so an append is never partially visible.
// Sessions are generation-tagged; when a newer search starts, deliveries
// from the superseded stream become no-ops instead of corrupting the newer
// session's result set.
type SearchService struct {
	client domain.GenerativeClient
	gen    atomic.Uint64
}

// NewSearchService creates a search service backed by the given AI client
func NewSearchService(client domain.GenerativeClient) *SearchService {
	return &SearchService{client: client}
}

// SearchOutcome is the reconciled payload produced when a stream completes
type SearchOutcome struct {
	Results      []domain.SearchResult   `json:"results"`
	MissingItems []string                `json:"missingItems,omitempty"`
	Grounding    []domain.GroundingChunk `json:"-"`
}

// searchSession owns the result set of one search invocation. The splitter,
// the accumulator and the session itself are created fresh per call; no
// mutable parser state crosses search sessions.
type searchSession struct {
	svc     *SearchService
	gen     uint64
	results []domain.SearchResult
}

func (s *SearchService) newSession() *searchSession {
	return &searchSession{svc: s, gen: s.gen.Add(1)}
}

// current reports whether this session is still the newest one
func (s *searchSession) current() bool {
	return s.svc.gen.Load() == s.gen
}

// deliver appends an entity and forwards it to the caller, unless the
// session has been superseded.
func (s *searchSession) deliver(result domain.SearchResult, onResult func(domain.SearchResult)) {
	if !s.current() {
		return
	}
	s.results = append(s.results, result)
	if onResult != nil {
		onResult(result)
	}
}

// blockParseFunc adapts the typed block parsers to the coordinator loop
type blockParseFunc func(block string) (domain.SearchResult, bool)

func parseStoreResult(block string) (domain.SearchResult, bool) {
	if store := ParseStoreBlock(block); store != nil {
		return *store, true
	}
	return nil, false
}

func parseGasResult(block string) (domain.SearchResult, bool) {
	if station := ParseGasBlock(block); station != nil {
		return *station, true
	}
	return nil, false
}

// ShoppingSearch streams store options for the given list and location.
// onResult is invoked synchronously per parsed store, in discovery order.
// On success the outcome carries the URL-attached results and the list items
// no store satisfied; on a transport failure the error is returned and
// whatever onResult already delivered remains valid.
func (s *SearchService) ShoppingSearch(
	ctx context.Context,
	shoppingList string,
	loc domain.Location,
	onResult func(domain.SearchResult),
) (*SearchOutcome, error) {
	if strings.TrimSpace(shoppingList) == "" || loc.IsZero() {
		return nil, domain.ErrInvalidRequest
	}

	session := s.newSession()

	fragments, err := s.client.StreamShoppingOptions(ctx, shoppingList, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStreamFailed, err)
	}

	grounding, err := s.consume(session, fragments, parseStoreResult, onResult)
	if err != nil {
		return nil, err
	}

	results := AttachSourceURLs(session.results, grounding)
	return &SearchOutcome{
		Results:      results,
		MissingItems: MissingItems(shoppingList, results),
		Grounding:    grounding,
	}, nil
}

// GasSearch streams gas station prices near the given location. Same
// delivery and failure semantics as ShoppingSearch; gas results have no
// missing-items computation.
func (s *SearchService) GasSearch(
	ctx context.Context,
	loc domain.Location,
	onResult func(domain.SearchResult),
) (*SearchOutcome, error) {
	if loc.IsZero() {
		return nil, domain.ErrInvalidRequest
	}

	session := s.newSession()

	fragments, err := s.client.StreamGasPrices(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStreamFailed, err)
	}

	grounding, err := s.consume(session, fragments, parseGasResult, onResult)
	if err != nil {
		return nil, err
	}

	return &SearchOutcome{
		Results:   AttachSourceURLs(session.results, grounding),
		Grounding: grounding,
	}, nil
}

// consume is the coordinator loop: append each fragment to the splitter,
// parse every completed block, accumulate grounding chunks, and flush the
// trailing buffer when the stream ends. Returns the deduplicated chunks, or
// an error without reconciling if the stream failed or was superseded.
func (s *SearchService) consume(
	session *searchSession,
	fragments <-chan domain.StreamFragment,
	parse blockParseFunc,
	onResult func(domain.SearchResult),
) ([]domain.GroundingChunk, error) {
	splitter := NewBlockSplitter()
	var chunks []domain.GroundingChunk

	for fragment := range fragments {
		if fragment.Err != nil {
			log.Printf("[SEARCH] stream failed after %d results: %v", len(session.results), fragment.Err)
			return nil, fmt.Errorf("%w: %v", domain.ErrStreamFailed, fragment.Err)
		}
		if !session.current() {
			log.Printf("[SEARCH] abandoning superseded stream (generation %d)", session.gen)
			go drainFragments(fragments)
			return nil, domain.ErrSearchSuperseded
		}

		chunks = append(chunks, fragment.Grounding...)

		for _, block := range splitter.Push(fragment.Text) {
			if result, ok := parse(block); ok {
				session.deliver(result, onResult)
			}
		}
	}

	if block, ok := splitter.Flush(); ok {
		if result, ok := parse(block); ok {
			session.deliver(result, onResult)
		}
	}

	if !session.current() {
		return nil, domain.ErrSearchSuperseded
	}

	return DedupGroundingChunks(chunks), nil
}

// drainFragments unblocks the producer after the consumer gives up on a
// stream, so its goroutine can finish and release the response body.
func drainFragments(fragments <-chan domain.StreamFragment) {
	for range fragments {
	}
}
