package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// browserPool hands out a shared headless browser and replaces it after
// maxPages pages, since Chrome's memory baseline keeps growing under load.
// It is safe for concurrent use.
type browserPool struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int
	maxPages int
	closed   bool
}

func newBrowserPool(maxPages int) (*browserPool, error) {
	p := &browserPool{maxPages: maxPages}
	if err := p.launch(); err != nil {
		return nil, err
	}
	return p, nil
}

// acquire returns the current browser and counts one page against it.
// When the budget is spent a fresh browser is launched first; if that
// launch fails the old browser keeps serving.
func (p *browserPool) acquire() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("browser closed")
	}
	if p.maxPages > 0 && p.pages >= p.maxPages {
		oldBrowser, oldLauncher := p.browser, p.launcher
		if err := p.launch(); err == nil {
			_ = oldBrowser.Close()
			oldLauncher.Kill()
			p.pages = 0
		}
	}
	p.pages++
	return p.browser, nil
}

// launch starts a browser with stability flags. Must be called with mu
// held or before the pool is shared.
func (p *browserPool) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	p.browser = browser
	p.launcher = l
	return nil
}

func (p *browserPool) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	err := p.browser.Close()
	p.launcher.Kill()
	return err
}
