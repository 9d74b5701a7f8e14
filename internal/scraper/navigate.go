package scraper

import (
	"strings"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

// loadPage navigates the page and validates the result: the title must
// carry the site signature, and a detected block page gets exactly one
// reload before giving up. Every failure here is connection-class so
// the orchestrator rotates proxies.
func (s *Scraper) loadPage(page browser.Page, url string) error {
	s.log.Infof("Loading page: %s", url)
	if err := page.Navigate(url, s.cfg.Scraper.PageTimeout); err != nil {
		return models.WrapError(models.KindConnection, "failed to load page", err)
	}
	s.metrics.PageLoads++

	// Let dynamic content render before inspecting anything.
	s.sleep(s.waits.DynamicContent)

	title, err := page.Title()
	if err != nil {
		return models.WrapError(models.KindConnection, "reading page title", err)
	}
	s.log.Infof("Page loaded: %s", title)

	if !strings.Contains(title, s.cfg.Scraper.SiteSignature) {
		// A wrong title on a successful load usually means an
		// interstitial or block page, not a content change.
		return models.NewError(models.KindConnection, "unexpected page title: %s", title)
	}

	html, err := page.Content()
	if err != nil {
		return models.WrapError(models.KindConnection, "reading page content", err)
	}
	if !isRestricted(html) {
		return nil
	}

	s.log.Warn("Detected 403 restricted page, attempting reload...")
	if err := page.Reload(s.cfg.Scraper.PageTimeout); err != nil {
		return models.WrapError(models.KindConnection, "reloading restricted page", err)
	}
	s.sleep(s.waits.PostReload)

	html, err = page.Content()
	if err != nil {
		return models.WrapError(models.KindConnection, "reading page content after reload", err)
	}
	if isRestricted(html) {
		return models.NewError(models.KindConnection, "page still restricted after reload")
	}
	s.log.Info("Page reloaded successfully")
	return nil
}

func isRestricted(html string) bool {
	return strings.Contains(html, "403") && strings.Contains(strings.ToLower(html), "restricted")
}
