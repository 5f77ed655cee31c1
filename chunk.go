package ragdoc

import "strings"

// Chunk is a contiguous piece of a page's text prepared for embedding.
type Chunk struct {
	SourceURL string `json:"sourceUrl"`
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Length    int    `json:"length"` // in runes
}

// ChunkOptions configures ChunkText.
type ChunkOptions struct {
	Size    int
	Overlap int
}

// Default chunking parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Validate returns an error if the options cannot produce chunks.
func (o ChunkOptions) Validate() error {
	if o.Size <= 0 {
		return Errorf(EINVALID, "chunk size must be positive, got %d", o.Size)
	}
	if o.Overlap < 0 || o.Overlap >= o.Size {
		return Errorf(EINVALID, "chunk overlap must be in [0, %d), got %d", o.Size, o.Overlap)
	}
	return nil
}

// chunkSeparators are tried in order when looking for a chunk boundary.
var chunkSeparators = []string{"\n\n", "\n", " "}

// ChunkText splits text into overlapping chunks of at most opts.Size runes.
//
// Consecutive chunks share exactly opts.Overlap runes, so the original text
// is the first chunk followed by every later chunk with its first
// opts.Overlap runes removed. Boundaries fall after a paragraph break, line
// break or space when one exists past the overlap, otherwise the chunk is
// cut at opts.Size. Whitespace-only text yields no chunks.
func ChunkText(sourceURL, text string, opts ChunkOptions) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	var chunks []Chunk
	start := 0
	for {
		end := len(runes)
		if end-start > opts.Size {
			end = chunkBoundary(runes, start+opts.Overlap, start+opts.Size)
		}
		chunks = append(chunks, Chunk{
			SourceURL: sourceURL,
			Index:     len(chunks),
			Text:      string(runes[start:end]),
			Length:    end - start,
		})
		if end == len(runes) {
			return chunks, nil
		}
		start = end - opts.Overlap
	}
}

// chunkBoundary returns the end of a chunk in (lo, hi], placed just after
// the last occurrence of the first separator found in that range.
func chunkBoundary(runes []rune, lo, hi int) int {
	for _, sep := range chunkSeparators {
		s := []rune(sep)
		for end := hi; end > lo; end-- {
			if end-len(s) < 0 {
				break
			}
			if hasRunes(runes[end-len(s):end], s) {
				return end
			}
		}
	}
	return hi
}

func hasRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
