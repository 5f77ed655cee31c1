package ragdoc

import "context"

// Default retrieval parameters.
const DefaultTopK = 4

// QueryState is a stage of answering a question.
type QueryState int

// Query states in the order they are reached.
const (
	QueryReceived QueryState = iota
	QueryEmbedded
	QueryRetrieved
	QueryAnswered
	QueryFailed
)

func (s QueryState) String() string {
	switch s {
	case QueryReceived:
		return "received"
	case QueryEmbedded:
		return "embedded"
	case QueryRetrieved:
		return "retrieved"
	case QueryAnswered:
		return "answered"
	case QueryFailed:
		return "failed"
	}
	return "unknown"
}

// Source identifies a chunk used to answer a question.
type Source struct {
	URL        string  `json:"url"`
	ChunkIndex int     `json:"chunkIndex"`
	Score      float32 `json:"score"`
}

// Answer is the response to a question with its provenance.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`

	// State is QueryAnswered for an answer returned by an Asker.
	State QueryState `json:"-"`
}

// SourceURLs returns the distinct source URLs in retrieval order.
func (a *Answer) SourceURLs() []string {
	seen := make(map[string]bool, len(a.Sources))
	var urls []string
	for _, s := range a.Sources {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		urls = append(urls, s.URL)
	}
	return urls
}

// Asker answers natural language questions over indexed documentation.
type Asker interface {
	// Ask answers a question. Failures are returned as *QueryError
	// carrying the last state reached before the failure.
	Ask(ctx context.Context, question string) (*Answer, error)
}
