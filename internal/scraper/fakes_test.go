package scraper

import (
	"fmt"
	"time"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/internal/config"
	"github.com/skoom21/zocdoc-scraper/internal/logger"
)

func locKey(loc browser.Locator) string { return loc.Selector + "|" + loc.Text }

// fakePage scripts the rendering surface for orchestrator tests.
type fakePage struct {
	title     string
	content   string
	navErr    error
	markerErr error

	// reloadTo replaces content when the page is reloaded.
	reloadTo string
	reloads  int

	// afterShowMore replaces content once the show-more control has
	// been clicked.
	afterShowMore   string
	showMoreClicked bool

	// elements maps a locator key to the visible texts of its matches.
	elements map[string][]string
	// visibility overrides; default is "visible when matched".
	visible map[string]bool
	// normalClickErr fails non-forced clicks for a locator key.
	normalClickErr map[string]error
	// textErrAt fails Text() for a "key#index" entry.
	textErrAt map[string]error

	clicks []string
	keys   []string
}

func (p *fakePage) Navigate(string, time.Duration) error { return p.navErr }
func (p *fakePage) Title() (string, error)               { return p.title, nil }

func (p *fakePage) Reload(time.Duration) error {
	p.reloads++
	if p.reloadTo != "" {
		p.content = p.reloadTo
	}
	return nil
}

func (p *fakePage) Content() (string, error) {
	if p.showMoreClicked && p.afterShowMore != "" {
		return p.afterShowMore, nil
	}
	return p.content, nil
}

func (p *fakePage) WaitForMarker(string, time.Duration) error { return p.markerErr }

func (p *fakePage) Count(loc browser.Locator) (int, error) {
	return len(p.elements[locKey(loc)]), nil
}

func (p *fakePage) Text(loc browser.Locator, index int) (string, error) {
	if err, ok := p.textErrAt[fmt.Sprintf("%s#%d", locKey(loc), index)]; ok {
		return "", err
	}
	texts := p.elements[locKey(loc)]
	if index >= len(texts) {
		return "", nil
	}
	return texts[index], nil
}

func (p *fakePage) Visible(loc browser.Locator, index int) (bool, error) {
	if v, ok := p.visible[locKey(loc)]; ok {
		return v, nil
	}
	return index < len(p.elements[locKey(loc)]), nil
}

func (p *fakePage) Click(loc browser.Locator, index int, force bool) error {
	if !force {
		if err, ok := p.normalClickErr[locKey(loc)]; ok {
			return err
		}
	}
	p.clicks = append(p.clicks, fmt.Sprintf("%s#%d force=%v", locKey(loc), index, force))
	if locKey(loc) == locKey(locShowMore) {
		p.showMoreClicked = true
	}
	return nil
}

func (p *fakePage) Screenshot(string) error { return nil }

func (p *fakePage) SendKey(key string) error {
	p.keys = append(p.keys, key)
	return nil
}

type fakeSession struct {
	page       browser.Page
	newPageErr error
	closed     bool
}

func (s *fakeSession) NewPage() (browser.Page, error) {
	if s.newPageErr != nil {
		return nil, s.newPageErr
	}
	return s.page, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeLauncher struct {
	sessions  []*fakeSession
	launchErr []error
	opts      []browser.LaunchOptions
}

func (l *fakeLauncher) Launch(opts browser.LaunchOptions) (browser.Session, error) {
	attempt := len(l.opts)
	l.opts = append(l.opts, opts)
	if attempt < len(l.launchErr) && l.launchErr[attempt] != nil {
		return nil, l.launchErr[attempt]
	}
	if attempt < len(l.sessions) {
		return l.sessions[attempt], nil
	}
	return l.sessions[len(l.sessions)-1], nil
}

func testConfig(t interface{ TempDir() string }) *config.Config {
	cfg := config.Default()
	cfg.Scraper.MaxRetries = 2
	cfg.Scraper.RetryDelay = 0
	cfg.Output.Dir = t.TempDir()
	cfg.Log.Dir = t.TempDir()
	return cfg
}

func newTestScraper(cfg *config.Config, launcher browser.Launcher) *Scraper {
	s := New(cfg, logger.NewNop(), launcher)
	s.waits = Waits{}
	s.sleep = func(time.Duration) {}
	return s
}
