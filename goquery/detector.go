package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc"
)

// Ensure Detector implements ragdoc.FrameworkDetector at compile time.
var _ ragdoc.FrameworkDetector = (*Detector)(nil)

// frameworkMarkers lists, per framework, selectors that only that
// framework's generator emits. Order matters: VitePress is checked before
// VuePress because it inherits some of its markup.
var frameworkMarkers = []struct {
	framework ragdoc.Framework
	selectors []string
}{
	{ragdoc.FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container", ".theme-doc-markdown"}},
	{ragdoc.FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{ragdoc.FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar"}},
	{ragdoc.FrameworkVitePress, []string{"#VPContent", ".VPDoc", ".vp-doc"}},
	{ragdoc.FrameworkVuePress, []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"}},
	{ragdoc.FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{ragdoc.FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"}},
}

// generatorNames maps substrings of <meta name="generator"> to frameworks.
var generatorNames = []struct {
	name      string
	framework ragdoc.Framework
}{
	{"sphinx", ragdoc.FrameworkSphinx},
	{"gitbook", ragdoc.FrameworkGitBook},
	{"docusaurus", ragdoc.FrameworkDocusaurus},
	{"mkdocs", ragdoc.FrameworkMkDocs},
	{"vitepress", ragdoc.FrameworkVitePress},
	{"vuepress", ragdoc.FrameworkVuePress},
	{"nextra", ragdoc.FrameworkNextra},
}

// contentSelectors holds the main-content region of each framework.
var contentSelectors = map[ragdoc.Framework]string{
	ragdoc.FrameworkDocusaurus: "div.theme-doc-markdown.markdown",
	ragdoc.FrameworkMkDocs:     "article.md-content__inner",
	ragdoc.FrameworkSphinx:     "div[role='main']",
	ragdoc.FrameworkVitePress:  ".vp-doc",
	ragdoc.FrameworkVuePress:   ".theme-default-content",
	ragdoc.FrameworkGitBook:    "main",
	ragdoc.FrameworkNextra:     "article",
}

// fallbackSelector is used for pages of an unknown framework.
const fallbackSelector = "main, article, [role='main']"

// ContentSelector returns the CSS selector of the main content region for
// a framework.
func ContentSelector(f ragdoc.Framework) string {
	if s, ok := contentSelectors[f]; ok {
		return s
	}
	return fallbackSelector
}

// Detector identifies documentation frameworks from HTML content.
// It checks the meta generator tag, then framework-specific CSS classes
// and data attributes.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) ragdoc.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ragdoc.FrameworkUnknown
	}
	return d.detect(doc)
}

func (d *Detector) detect(doc *goquery.Document) ragdoc.Framework {
	if generator, ok := doc.Find("meta[name='generator']").Last().Attr("content"); ok {
		generator = strings.ToLower(generator)
		for _, g := range generatorNames {
			if strings.Contains(generator, g.name) {
				return g.framework
			}
		}
	}

	for _, m := range frameworkMarkers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}

	if hasGitBookClasses(doc) {
		return ragdoc.FrameworkGitBook
	}

	return ragdoc.FrameworkUnknown
}

// hasGitBookClasses reports whether the html element carries at least two
// of GitBook's classes: circular-corners, theme-clean, tint.
func hasGitBookClasses(doc *goquery.Document) bool {
	class, _ := doc.Find("html").Attr("class")
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
