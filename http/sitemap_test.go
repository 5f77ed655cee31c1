package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/ragdoc"
	raghttp "github.com/fwojciec/ragdoc/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverURLs_URLSet(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>
     {{BASE}}/docs/guide
  </loc></url>
  <url><loc>   </loc></url>
  <url><lastmod>2024-01-01</lastmod></url>
  <url><loc>{{BASE}}/docs/api</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := raghttp.NewSitemapService(srv.Client(), "")
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/docs/intro",
		srv.URL + "/docs/guide",
		srv.URL + "/docs/api",
	}, urls)
}

func TestSitemapService_DiscoverURLs_EmptyURLSet(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`,
	})
	defer srv.Close()

	svc := raghttp.NewSitemapService(srv.Client(), "")
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestSitemapService_DiscoverURLs_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-docs.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-api.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-docs.xml</loc></sitemap>
</sitemapindex>`

	sitemapDocs := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>{{BASE}}/shared</loc></url>
</urlset>`

	sitemapAPI := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/api/ref</loc></url>
  <url><loc>{{BASE}}/shared</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml":      sitemapIndex,
		"/sitemap-docs.xml": sitemapDocs,
		"/sitemap-api.xml":  sitemapAPI,
	})
	defer srv.Close()

	svc := raghttp.NewSitemapService(srv.Client(), "")
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/docs/intro",
		srv.URL + "/shared",
		srv.URL + "/api/ref",
	}, urls)
}

func TestSitemapService_DiscoverURLs_WithFilter(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>{{BASE}}/blog/post</loc></url>
  <url><loc>{{BASE}}/docs/legacy/old</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	filter := &ragdoc.URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
		Exclude: []*regexp.Regexp{regexp.MustCompile(`/legacy/`)},
	}

	svc := raghttp.NewSitemapService(srv.Client(), "")
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", filter)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/docs/intro"}, urls)
}

func TestSitemapService_DiscoverURLs_Errors(t *testing.T) {
	t.Parallel()

	t.Run("non-200 status is a fetch error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})
		defer srv.Close()

		svc := raghttp.NewSitemapService(srv.Client(), "")
		_, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

		require.Error(t, err)
		assert.Equal(t, ragdoc.EFETCH, ragdoc.ErrorCode(err))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("malformed XML is a parse error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": `<urlset><<not xml>>`,
		})
		defer srv.Close()

		svc := raghttp.NewSitemapService(srv.Client(), "")
		_, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

		assert.Equal(t, ragdoc.EPARSE, ragdoc.ErrorCode(err))
	})

	t.Run("empty document is a parse error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": ``,
		})
		defer srv.Close()

		svc := raghttp.NewSitemapService(srv.Client(), "")
		_, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

		assert.Equal(t, ragdoc.EPARSE, ragdoc.ErrorCode(err))
	})

	t.Run("unexpected root element is a parse error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": `<html><body>not a sitemap</body></html>`,
		})
		defer srv.Close()

		svc := raghttp.NewSitemapService(srv.Client(), "")
		_, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

		assert.Equal(t, ragdoc.EPARSE, ragdoc.ErrorCode(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := raghttp.NewSitemapService(nil, "")
		_, err := svc.DiscoverURLs(ctx, "http://127.0.0.1:0/sitemap.xml", nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSitemapService_SendsUserAgent(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
		_, _ = w.Write([]byte(`<urlset></urlset>`))
	}))
	defer srv.Close()

	svc := raghttp.NewSitemapService(srv.Client(), "ragdoc-test/1.0")
	_, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "ragdoc-test/1.0", got.Load())
}

func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = replaceBaseURL(body, srv.URL)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}))

	return srv
}

func replaceBaseURL(content, baseURL string) string {
	return regexp.MustCompile(`\{\{BASE\}\}`).ReplaceAllString(content, baseURL)
}
