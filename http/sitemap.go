package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/ragdoc"
)

// Ensure SitemapService implements ragdoc.SitemapService.
var _ ragdoc.SitemapService = (*SitemapService)(nil)

// SitemapService resolves sitemap URLs over HTTP.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client, userAgent string) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &SitemapService{client: client, userAgent: userAgent}
}

// DiscoverURLs fetches sitemapURL and returns its page URLs in document
// order. A <sitemapindex> is followed into each child sitemap once.
// A sitemap without entries yields an empty slice and no error.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, filter *ragdoc.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	urls, err := s.processSitemap(ctx, sitemapURL, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	// The same URL may be listed by several child sitemaps.
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] || !filter.Match(u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	resp, err := get(ctx, s.client, sitemapURL, s.userAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "parsing sitemap %s: %v", sitemapURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "empty sitemap XML at %s", sitemapURL)
	}

	switch root.Tag {
	case "sitemapindex":
		return s.processSitemapIndex(ctx, root, seen)
	case "urlset":
		return parseURLSet(root), nil
	default:
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "unexpected sitemap root <%s> at %s", root.Tag, sitemapURL)
	}
}

// processSitemapIndex processes a <sitemapindex> element recursively.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var allURLs []string

	for _, loc := range locs(root, "sitemap") {
		urls, err := s.processSitemap(ctx, loc, seen)
		if err != nil {
			return nil, err
		}
		allURLs = append(allURLs, urls...)
	}

	return allURLs, nil
}

// parseURLSet extracts URLs from a <urlset> element.
func parseURLSet(root *etree.Element) []string {
	return locs(root, "url")
}

// locs returns the trimmed, non-empty <loc> text of each child named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}
