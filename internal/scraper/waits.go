package scraper

import "time"

// Waits are the fixed pacing and settle intervals of a run. They model
// human-like pacing and give asynchronous rendering time to settle;
// tests inject zeroes without changing control flow.
type Waits struct {
	DynamicContent      time.Duration // after navigation, let dynamic content render
	PostReload          time.Duration // after a block-recovery reload
	PreSelection        time.Duration // before scanning provider dropdowns
	DropdownOpen        time.Duration // after opening a dropdown
	PreClick            time.Duration // between scroll-into-view and click
	PostSelect          time.Duration // after selecting a provider option
	PostSelectionUpdate time.Duration // page refresh after provider selection
	ModalOpen           time.Duration // after clicking a trigger
	MarkerTimeout       time.Duration // upper bound waiting for timeslot markup
	PostMarkerRender    time.Duration // extra render time once markers appear
	MarkerMissGrace     time.Duration // grace period when markers never appear
	ShowMore            time.Duration // after clicking "Show more availability"
	PostClose           time.Duration // after closing a modal
	NextTarget          time.Duration // settle before moving to the next provider
}

// DefaultWaits returns the production pacing.
func DefaultWaits() Waits {
	return Waits{
		DynamicContent:      10 * time.Second,
		PostReload:          5 * time.Second,
		PreSelection:        5 * time.Second,
		DropdownOpen:        3 * time.Second,
		PreClick:            1 * time.Second,
		PostSelect:          4 * time.Second,
		PostSelectionUpdate: 5 * time.Second,
		ModalOpen:           2 * time.Second,
		MarkerTimeout:       20 * time.Second,
		PostMarkerRender:    3 * time.Second,
		MarkerMissGrace:     2 * time.Second,
		ShowMore:            5 * time.Second,
		PostClose:           1 * time.Second,
		NextTarget:          3 * time.Second,
	}
}
