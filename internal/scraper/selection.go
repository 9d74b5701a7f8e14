package scraper

import (
	"strings"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

// selectTarget activates the named provider in the page's dropdown
// controls. Candidates are scanned in order: a control already showing
// the provider's short name wins immediately; the "All provider
// availability" aggregate control is opened and searched with the
// multi-strategy option lookup. Errors on a single candidate move the
// scan along instead of failing the selection.
func (s *Scraper) selectTarget(page browser.Page, target string) error {
	short := shortName(target)
	s.log.Infof("Searching for provider dropdown to select %s...", target)
	s.sleep(s.waits.PreSelection)

	count, err := page.Count(locDropdown)
	if err != nil {
		return models.WrapError(models.KindTargetSelection, "enumerating provider dropdowns", err)
	}
	s.log.Debugf("Found %d provider dropdowns", count)

	if count == 0 {
		s.log.Error("No provider dropdowns found")
		s.saveDebugArtifacts(page, "no_dropdown")
		return models.NewError(models.KindTargetSelection, "no provider dropdowns found on page")
	}

	for i := 0; i < count; i++ {
		selected, err := s.tryDropdown(page, i, target, short)
		if err != nil {
			s.log.Warnf("Error with dropdown %d: %v", i+1, err)
			continue
		}
		if selected {
			return nil
		}
	}
	return models.NewError(models.KindTargetSelection, "could not select %s", target)
}

// tryDropdown inspects one candidate control. Returns true once the
// target is active, false to continue scanning.
func (s *Scraper) tryDropdown(page browser.Page, index int, target, short string) (bool, error) {
	label, err := page.Text(locDropdown, index)
	if err != nil {
		return false, err
	}
	s.log.Debugf("Dropdown %d: %.80s", index+1, label)

	if strings.Contains(label, short) {
		s.log.Infof("%s already selected", target)
		return true, nil
	}
	if !isAggregateControl(label) {
		return false, nil
	}

	s.log.Info("Found 'All provider availability' dropdown")
	s.sleep(s.waits.PreClick)
	if err := page.Click(locDropdown, index, false); err != nil {
		return false, err
	}
	s.sleep(s.waits.DropdownOpen)

	loc, optIndex, found := s.findTargetOption(page, target, short)
	if !found {
		s.log.Errorf("Could not find %s in options", target)
		s.saveDebugArtifacts(page, "option_not_found")
		return false, nil
	}

	s.log.Infof("Clicking %s option...", target)
	s.sleep(s.waits.PreClick)
	if err := page.Click(loc, optIndex, false); err != nil {
		s.log.Warn("Normal click failed, using force click")
		if err := page.Click(loc, optIndex, true); err != nil {
			return false, err
		}
	}
	s.log.Infof("Successfully selected %s", target)
	s.sleep(s.waits.PostSelect)
	return true, nil
}

// findTargetOption locates the provider option using an ordered
// fallback chain: accessible-role options, attribute-tagged options,
// then a free-text element match on the full name. The first strategy
// with a visible match wins.
func (s *Scraper) findTargetOption(page browser.Page, target, short string) (browser.Locator, int, bool) {
	roleLoc := browser.Locator{Selector: locRoleOption.Selector, Text: short}
	if n, err := page.Count(roleLoc); err == nil && n > 0 {
		if visible, err := page.Visible(roleLoc, 0); err == nil && visible {
			s.log.Debug("Found via role option filter")
			return roleLoc, 0, true
		}
	}

	if n, err := page.Count(locProviderOption); err == nil {
		for i := 0; i < n; i++ {
			text, err := page.Text(locProviderOption, i)
			if err != nil {
				continue
			}
			if strings.Contains(text, short) {
				s.log.Debug("Found via provider-option attribute")
				return locProviderOption, i, true
			}
		}
	}

	textLoc := browser.Locator{Selector: "div", Text: target}
	if n, err := page.Count(textLoc); err == nil && n > 0 {
		if visible, err := page.Visible(textLoc, 0); err == nil && visible {
			s.log.Debug("Found via free text search")
			return textLoc, 0, true
		}
	}

	return browser.Locator{}, 0, false
}

// shortName is the portion of the display name before the first comma,
// e.g. "Dr. Michael Ayzin" from "Dr. Michael Ayzin, DDS".
func shortName(target string) string {
	if i := strings.Index(target, ","); i >= 0 {
		return strings.TrimSpace(target[:i])
	}
	return strings.TrimSpace(target)
}

func isAggregateControl(label string) bool {
	return strings.Contains(label, "All provider") ||
		strings.Contains(strings.ToLower(label), "provider availability")
}
