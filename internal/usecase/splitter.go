package usecase

import "strings"

// blockDelimiter precedes each entity's name in the streamed response; the
// prompts instruct the model to emit "### [Name]" headings.
const blockDelimiter = "###"

// BlockSplitter incrementally partitions an append-only text stream into
// complete entity blocks. One splitter serves exactly one stream session;
// sessions never share splitter state.
//
// Blocks are yielded strictly in the order their delimiters appeared, which
// is what lets the UI show each store the moment its block is complete
// rather than at stream end.
type BlockSplitter struct {
	buffer strings.Builder
}

// NewBlockSplitter creates a splitter with an empty buffer
func NewBlockSplitter() *BlockSplitter {
	return &BlockSplitter{}
}

// Push appends a stream fragment and returns all blocks completed by it, in
// order, trimmed. Empty blocks (e.g. from a leading delimiter) are skipped.
// The text after the last delimiter stays buffered for the next Push; it may
// itself still be incomplete.
func (s *BlockSplitter) Push(fragment string) []string {
	s.buffer.WriteString(fragment)

	parts := strings.Split(s.buffer.String(), blockDelimiter)
	if len(parts) == 1 {
		return nil
	}

	var blocks []string
	for _, part := range parts[:len(parts)-1] {
		block := strings.TrimSpace(part)
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	s.buffer.Reset()
	s.buffer.WriteString(parts[len(parts)-1])
	return blocks
}

// Flush returns whatever remains in the buffer as one final block. Called
// once when the stream ends; the boolean is false when nothing remains.
func (s *BlockSplitter) Flush() (string, bool) {
	block := strings.TrimSpace(s.buffer.String())
	s.buffer.Reset()
	if block == "" {
		return "", false
	}
	return block, true
}
