package ragdoc

import (
	"context"
	"encoding/json"
)

// PageResult is the outcome of crawling one URL. Outcome is either
// PageSuccess or PageFailure, never both.
type PageResult struct {
	URL     string
	Outcome PageOutcome
}

// PageOutcome is implemented by PageSuccess and PageFailure only.
type PageOutcome interface {
	pageOutcome()
}

// PageSuccess holds the cleaned text of a fetched page.
// Text may be empty when the content region was not found.
type PageSuccess struct {
	Text string
}

// PageFailure holds the error message for a page that could not be
// fetched or parsed.
type PageFailure struct {
	Error string
}

func (PageSuccess) pageOutcome() {}
func (PageFailure) pageOutcome() {}

// NewPageSuccess returns a successful result for url.
func NewPageSuccess(url, text string) PageResult {
	return PageResult{URL: url, Outcome: PageSuccess{Text: text}}
}

// NewPageFailure returns a failed result for url.
func NewPageFailure(url string, err error) PageResult {
	return PageResult{URL: url, Outcome: PageFailure{Error: err.Error()}}
}

// Text returns the page text and true if the result is a success.
func (r PageResult) Text() (string, bool) {
	s, ok := r.Outcome.(PageSuccess)
	return s.Text, ok
}

// Failed reports whether the result is a failure.
func (r PageResult) Failed() bool {
	_, ok := r.Outcome.(PageFailure)
	return ok
}

type pageResultJSON struct {
	URL   string  `json:"url"`
	Text  *string `json:"text,omitempty"`
	Error *string `json:"error,omitempty"`
}

// MarshalJSON encodes the result as {"url","text"} or {"url","error"}.
func (r PageResult) MarshalJSON() ([]byte, error) {
	v := pageResultJSON{URL: r.URL}
	switch o := r.Outcome.(type) {
	case PageSuccess:
		v.Text = &o.Text
	case PageFailure:
		v.Error = &o.Error
	default:
		return nil, Errorf(EINVALID, "page result for %q has no outcome", r.URL)
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes a result written by MarshalJSON. Exactly one of
// "text" and "error" must be present.
func (r *PageResult) UnmarshalJSON(data []byte) error {
	var v pageResultJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.URL == "" {
		return Errorf(EINVALID, "page result missing url")
	}
	switch {
	case v.Text != nil && v.Error != nil:
		return Errorf(EINVALID, "page result for %q has both text and error", v.URL)
	case v.Text != nil:
		*r = NewPageSuccess(v.URL, *v.Text)
	case v.Error != nil:
		*r = PageResult{URL: v.URL, Outcome: PageFailure{Error: *v.Error}}
	default:
		return Errorf(EINVALID, "page result for %q has neither text nor error", v.URL)
	}
	return nil
}

// CrawlProgressType identifies a crawl progress event.
type CrawlProgressType int

// Crawl progress event types.
const (
	CrawlStarted CrawlProgressType = iota
	CrawlCompleted
	CrawlFailed
	CrawlFinished
)

// CrawlProgress reports progress during a crawl.
type CrawlProgress struct {
	Type      CrawlProgressType
	URL       string
	Completed int
	Total     int
	Err       error
}

// CrawlProgressFunc is called as pages are processed. Calls are made from
// worker goroutines but never concurrently.
type CrawlProgressFunc func(CrawlProgress)

// CorpusWriter persists page results with atomic semantics.
// Save records one result as it completes; Commit writes the final
// artifact; Abort discards pending state.
type CorpusWriter interface {
	Save(ctx context.Context, result PageResult) error
	Commit() error
	Abort() error
}
