package domain

// GroundingSource is the title/uri pair inside a grounding chunk
type GroundingSource struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// GroundingChunk is side-channel source-attribution metadata the AI service
// emits alongside generated text. Maps-tool results arrive under "maps",
// web search results under "web"; either may be absent. It is used only to
// recover a real map/URL for a named entity after the stream ends.
type GroundingChunk struct {
	Maps *GroundingSource `json:"maps,omitempty"`
	Web  *GroundingSource `json:"web,omitempty"`
}

// URI returns the chunk's attribution URI, preferring the maps source
func (c GroundingChunk) URI() string {
	if c.Maps != nil && c.Maps.URI != "" {
		return c.Maps.URI
	}
	if c.Web != nil {
		return c.Web.URI
	}
	return ""
}

// Title returns the chunk's attribution title, preferring the maps source
func (c GroundingChunk) Title() string {
	if c.Maps != nil && c.Maps.Title != "" {
		return c.Maps.Title
	}
	if c.Web != nil {
		return c.Web.Title
	}
	return ""
}

// StreamFragment is one increment of a live AI response: a text piece plus
// any grounding chunks that arrived with it. A fragment with Err set is
// terminal; the producer closes the channel after sending it.
type StreamFragment struct {
	Text      string
	Grounding []GroundingChunk
	Err       error
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location biases a search: either device coordinates or a free-text place
// description ("San Francisco, CA", a zip code, a landmark). When the client
// cannot obtain coordinates it falls back to the free-text form.
type Location struct {
	Coords *Coordinates `json:"coords,omitempty"`
	Query  string       `json:"query,omitempty"`
}

// IsZero reports whether no location bias was supplied at all
func (l Location) IsZero() bool {
	return l.Coords == nil && l.Query == ""
}
