// Package browser defines the rendering/session capability the scraper
// consumes. Production uses the chromedp implementation; tests supply
// fakes satisfying the same interfaces.
package browser

import (
	"time"

	"github.com/skoom21/zocdoc-scraper/internal/proxy"
)

// Locator addresses a set of page elements: a CSS selector plus an
// optional substring filter on the elements' visible text.
type Locator struct {
	Selector string
	Text     string
}

// LaunchOptions configure a browser session.
type LaunchOptions struct {
	Headless bool
	Humanize bool
	Proxy    proxy.Endpoint
	// ElementTimeout bounds individual element operations on pages of
	// this session.
	ElementTimeout time.Duration
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(opts LaunchOptions) (Session, error)
}

// Session is a scoped browser runtime. Exactly one is open at a time;
// it must be closed before the next proxy attempt begins.
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Page is a single rendered page.
type Page interface {
	// Navigate loads the URL and waits for document readiness, bounded
	// by timeout. Readiness is not network idleness: late XHR-rendered
	// content is covered by the caller's post-navigation settle
	// interval rather than a CDP network-idle wait.
	Navigate(url string, timeout time.Duration) error
	Reload(timeout time.Duration) error
	Title() (string, error)
	// Content returns the current page markup.
	Content() (string, error)
	// WaitForMarker blocks until an element matching the selector is
	// present, bounded by timeout.
	WaitForMarker(selector string, timeout time.Duration) error
	// Count returns how many elements match the locator.
	Count(loc Locator) (int, error)
	// Text returns the visible text of the index-th match.
	Text(loc Locator, index int) (string, error)
	// Visible reports whether the index-th match is rendered visible.
	Visible(loc Locator, index int) (bool, error)
	// Click scrolls the index-th match into view and activates it.
	// force bypasses event dispatch and invokes the element directly.
	Click(loc Locator, index int, force bool) error
	Screenshot(path string) error
	SendKey(key string) error
}
