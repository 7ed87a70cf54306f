package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nearbuy/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the Gemini generative-language API. It
// implements domain.GenerativeClient.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	routeModel  string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a Gemini API client. model serves the streaming search
// calls; routeModel (typically a stronger model) serves route generation.
func NewClient(apiKey, baseURL, model, routeModel string) *Client {
	// Free-tier quota is per-minute; 1 req/sec with a small burst keeps
	// well under it without serializing interactive use.
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 300 * time.Second, // streams stay open for the whole response
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		routeModel:  routeModel,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// generateRequest is the generateContent/streamGenerateContent request body
type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	ToolConfig       *toolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type toolConfig struct {
	RetrievalConfig *retrievalConfig `json:"retrievalConfig,omitempty"`
}

type retrievalConfig struct {
	LatLng *latLng `json:"latLng,omitempty"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

// generateResponse is the subset of the API response shape we consume; one
// of these arrives per SSE event when streaming.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []domain.GroundingChunk `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// text joins every text part of the first candidate
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// grounding returns the first candidate's grounding chunks, if any
func (r *generateResponse) grounding() []domain.GroundingChunk {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return r.Candidates[0].GroundingMetadata.GroundingChunks
}

// StreamShoppingOptions streams store options for a shopping list near the
// given location, with maps grounding enabled.
func (c *Client) StreamShoppingOptions(ctx context.Context, shoppingList string, loc domain.Location) (<-chan domain.StreamFragment, error) {
	req := &generateRequest{
		Contents: []content{{Parts: []part{{Text: shoppingPrompt(shoppingList, loc)}}}},
		Tools:    []tool{{GoogleMaps: &struct{}{}}},
	}
	applyLocationBias(req, loc)
	return c.stream(ctx, c.model, req)
}

// StreamGasPrices streams gas station prices near the given location
func (c *Client) StreamGasPrices(ctx context.Context, loc domain.Location) (<-chan domain.StreamFragment, error) {
	req := &generateRequest{
		Contents: []content{{Parts: []part{{Text: gasPrompt(loc)}}}},
		Tools:    []tool{{GoogleMaps: &struct{}{}}},
	}
	applyLocationBias(req, loc)
	return c.stream(ctx, c.model, req)
}

// GenerateRoute asks the route model for a single JSON route document and
// returns the raw response text; the caller owns parsing.
func (c *Client) GenerateRoute(ctx context.Context, stores []domain.Store, shoppingList string) (string, error) {
	req := &generateRequest{
		Contents:         []content{{Parts: []part{{Text: routePrompt(stores, shoppingList)}}}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	}
	return c.generate(ctx, c.routeModel, req)
}

// GenerateList drafts a shopping list from a free-text request
func (c *Client) GenerateList(ctx context.Context, request string) (string, error) {
	req := &generateRequest{
		Contents: []content{{Parts: []part{{Text: listPrompt(request)}}}},
	}
	return c.generate(ctx, c.model, req)
}

// applyLocationBias adds the lat/lng retrieval bias when coordinates were
// supplied; free-text locations are carried in the prompt instead.
func applyLocationBias(req *generateRequest, loc domain.Location) {
	if loc.Coords == nil {
		return
	}
	req.ToolConfig = &toolConfig{
		RetrievalConfig: &retrievalConfig{
			LatLng: &latLng{
				Latitude:  loc.Coords.Latitude,
				Longitude: loc.Coords.Longitude,
			},
		},
	}
}

// doRequest executes a POST with the request body and common headers
func (c *Client) doRequest(ctx context.Context, reqURL string, body *generateRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "NearBuy/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStreamFailed, err)
	}
	return resp, nil
}

// generate performs a non-streaming generateContent call
func (c *Client) generate(ctx context.Context, model string, body *generateRequest) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrMissingCredentials
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	resp, err := c.doRequest(ctx, reqURL, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[GEMINI] generateContent error - status: %d, body: %s", resp.StatusCode, truncate(string(raw), 512))
		return "", fmt.Errorf("%w: status %d", domain.ErrStreamFailed, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.Unmarshal(raw, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := genResp.text()
	if text == "" {
		return "", fmt.Errorf("%w: empty model response", domain.ErrStreamFailed)
	}

	if c.debug {
		log.Printf("[GEMINI] generateContent (%s): %d bytes of text", model, len(text))
	}
	return text, nil
}

// stream performs a streamGenerateContent call and pumps SSE events into a
// fragment channel. The producer goroutine owns the response body: it closes
// the channel when the stream ends, after a terminal Err fragment if the
// transport failed mid-stream.
func (c *Client) stream(ctx context.Context, model string, body *generateRequest) (<-chan domain.StreamFragment, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingCredentials
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, model, c.apiKey)

	resp, err := c.doRequest(ctx, reqURL, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Printf("[GEMINI] streamGenerateContent error - status: %d, body: %s", resp.StatusCode, truncate(string(raw), 512))
		return nil, fmt.Errorf("%w: status %d", domain.ErrStreamFailed, resp.StatusCode)
	}

	fragments := make(chan domain.StreamFragment, 16)

	go func() {
		defer close(fragments)
		defer resp.Body.Close()

		// Every send races against cancellation so an abandoned consumer
		// never strands this goroutine in a blocked channel send.
		send := func(f domain.StreamFragment) bool {
			select {
			case fragments <- f:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				send(domain.StreamFragment{Err: ctx.Err()})
				return
			default:
			}

			line := scanner.Text()
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				continue // SSE comments, blank keep-alives
			}

			var event generateResponse
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				log.Printf("[GEMINI] skipping malformed stream event: %v", err)
				continue
			}
			if event.Error != nil {
				send(domain.StreamFragment{Err: fmt.Errorf("gemini api error %d: %s", event.Error.Code, event.Error.Message)})
				return
			}

			fragment := domain.StreamFragment{
				Text:      event.text(),
				Grounding: event.grounding(),
			}
			if fragment.Text == "" && len(fragment.Grounding) == 0 {
				continue
			}
			if c.debug {
				log.Printf("[GEMINI] fragment: %d bytes, %d grounding chunks", len(fragment.Text), len(fragment.Grounding))
			}
			if !send(fragment) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			send(domain.StreamFragment{Err: err})
		}
	}()

	return fragments, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
