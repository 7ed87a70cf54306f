package usecase

import (
	"strings"

	"github.com/nearbuy/backend/internal/domain"
)

// Reconciliation runs once per completed search: deduplicate the grounding
// side-channel, attach source URLs to entities, and work out which requested
// list items no store satisfied. All functions here are pure over value
// copies and idempotent.

// DedupGroundingChunks collapses chunks sharing a URI. The later chunk wins
// (last-write-wins); output order is the order each URI was first seen.
// Chunks without a URI are indistinguishable for attribution and collapse
// onto the empty key like any other.
func DedupGroundingChunks(chunks []domain.GroundingChunk) []domain.GroundingChunk {
	byURI := make(map[string]int)
	var deduped []domain.GroundingChunk

	for _, chunk := range chunks {
		uri := chunk.URI()
		if idx, seen := byURI[uri]; seen {
			deduped[idx] = chunk
			continue
		}
		byURI[uri] = len(deduped)
		deduped = append(deduped, chunk)
	}
	return deduped
}

// AttachSourceURLs returns a copy of the result set with each entity's URL
// set from the first grounding chunk whose title is a case-insensitive
// substring of the entity's name. First match wins, not best match; this is
// a best-effort heuristic and two same-named entities can be attributed the
// same chunk. Entities with no matching chunk keep their existing URL.
func AttachSourceURLs(results []domain.SearchResult, chunks []domain.GroundingChunk) []domain.SearchResult {
	attached := make([]domain.SearchResult, len(results))
	for i, result := range results {
		attached[i] = result
		name := strings.ToLower(result.ResultName())
		for _, chunk := range chunks {
			title := chunk.Title()
			if title == "" || chunk.URI() == "" {
				continue
			}
			if strings.Contains(name, strings.ToLower(title)) {
				attached[i] = result.WithSourceURL(chunk.URI())
				break
			}
		}
	}
	return attached
}

// MissingItems computes which lines of the user's original shopping list no
// discovered store item satisfies, in original list order.
//
// A requested item counts as found when a single discovered item name
// contains every whitespace-separated token of the request as a substring,
// order-independent and case-insensitive. The match is deliberately loose
// ("2% milk" is satisfied by "Organic 2% Milk, 1 Gallon"), favoring a false
// "found" over a false "missing". Gas stations contribute nothing.
func MissingItems(originalList string, results []domain.SearchResult) []string {
	requested := normalizeRequestedItems(originalList)
	if len(requested) == 0 {
		return nil
	}

	discovered := discoveredItemNames(results)

	var missing []string
	for _, item := range requested {
		tokens := strings.Fields(item)
		if !anyItemContainsAll(discovered, tokens) {
			missing = append(missing, item)
		}
	}
	return missing
}

// normalizeRequestedItems applies the normalizer's marker-stripping step to
// each line of the pre-AI, user-authored list: lowercase, trim, strip one
// leading list marker, drop empties.
func normalizeRequestedItems(originalList string) []string {
	var items []string
	for _, line := range strings.Split(originalList, "\n") {
		item := strings.ToLower(StripListMarker(line))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// discoveredItemNames flattens all store items into a set of lowercased,
// trimmed names.
func discoveredItemNames(results []domain.SearchResult) []string {
	seen := make(map[string]bool)
	var names []string
	for _, result := range results {
		store, ok := result.(domain.Store)
		if !ok {
			continue
		}
		for _, item := range store.Items {
			name := strings.ToLower(strings.TrimSpace(item.Name))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// anyItemContainsAll reports whether some single discovered name contains
// every token as a substring (not whole-word).
func anyItemContainsAll(names []string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, name := range names {
		all := true
		for _, token := range tokens {
			if !strings.Contains(name, token) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
