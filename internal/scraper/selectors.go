package scraper

import (
	"github.com/skoom21/zocdoc-scraper/internal/browser"
)

// On-page locators for the availability surface. The dropdown classes
// are the generated ones observed on the provider page; the class-glob
// fallback survives regeneration.
var (
	locDropdown = browser.Locator{
		Selector: `.css-nm0j11-control, .css-eio9xs-control, div[class*="control"]`,
	}
	locTrigger        = browser.Locator{Selector: "span", Text: "View more availability"}
	locShowMore       = browser.Locator{Selector: "button", Text: "Show more availability"}
	locCloseButton    = browser.Locator{Selector: `button[aria-label="Close"]`}
	locRoleOption     = browser.Locator{Selector: `[role="option"]`}
	locProviderOption = browser.Locator{Selector: `[data-test="provider-option"]`}
)

// Markup markers used during modal parsing.
const (
	markerTimeslot = `[data-test="availability-modal-timeslot"]`

	attrTimeslot    = "availability-modal-timeslot"
	attrContainer   = "availability-modal-view-container"
	attrModal       = "modal-content"
	attrDateWrapper = "availability-modal-content-date-wrapper"
	attrDayTitle    = "availability-modal-content-day-title"
)

// unknownDate is the sentinel date label for timeslots without an
// ancestor date wrapper.
const unknownDate = "Unknown Date"
