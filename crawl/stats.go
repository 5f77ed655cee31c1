package crawl

import (
	"fmt"
	"strings"

	"github.com/fwojciec/ragdoc"
)

// Stats summarizes a set of page results.
type Stats struct {
	Succeeded int
	Failed    int
	Empty     int // successes with no text
	Bytes     int
}

// Summarize counts the outcomes of results.
func Summarize(results []ragdoc.PageResult) Stats {
	var s Stats
	for _, r := range results {
		text, ok := r.Text()
		if !ok {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Bytes += len(text)
		if text == "" {
			s.Empty++
		}
	}
	return s
}

// String reports the counts as "N pages (F failed, E empty, size)".
func (s Stats) String() string {
	return fmt.Sprintf("%d pages (%d failed, %d empty, %s of text)", s.Succeeded, s.Failed, s.Empty, textSize(s.Bytes))
}

func textSize(n int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	}
	return fmt.Sprintf("%d B", n)
}

// ShortURL drops the scheme of u and, when the rest is longer than width
// runes, keeps the path end behind "...".
func ShortURL(u string, width int) string {
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	r := []rune(u)
	switch {
	case width <= 0:
		return ""
	case len(r) <= width:
		return u
	case width <= 3:
		return string(r[:width])
	}
	return "..." + string(r[len(r)-width+3:])
}
