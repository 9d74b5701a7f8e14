package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

const modalHTML = `<html><body>
<div data-test="availability-modal-view-container">
  <div data-test="availability-modal-content-date-wrapper">
    <div data-test="availability-modal-content-day-title">Mon, Jan 26</div>
    <a data-test="availability-modal-timeslot">9:30 am</a>
    <a data-test="availability-modal-timeslot">10:00 am</a>
    <a data-test="availability-modal-timeslot">10:30 am</a>
  </div>
  <a data-test="availability-modal-timeslot">11:00 am</a>
  <a data-test="availability-modal-timeslot">   </a>
</div>
</body></html>`

const modalHTMLExpanded = `<html><body>
<div data-test="availability-modal-view-container">
  <div data-test="availability-modal-content-date-wrapper">
    <div data-test="availability-modal-content-day-title">Mon, Jan 26</div>
    <a data-test="availability-modal-timeslot">9:30 am</a>
    <a data-test="availability-modal-timeslot">10:00 am</a>
    <a data-test="availability-modal-timeslot">10:30 am</a>
  </div>
  <div data-test="availability-modal-content-date-wrapper">
    <div data-test="availability-modal-content-day-title">Tue, Jan 27</div>
    <a data-test="availability-modal-timeslot">9:30 am</a>
  </div>
</div>
</body></html>`

func TestExtractAppointments(t *testing.T) {
	cfg := testConfig(t)
	s := newTestScraper(cfg, &fakeLauncher{})
	s.now = func() time.Time { return time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC) }

	container, err := s.findModalContainer(modalHTML)
	require.NoError(t, err)

	appts := s.extractAppointments(container, "Dr. Michael Ayzin, DDS")

	// Three dated slots, one without a date wrapper; the blank entry is
	// skipped.
	require.Len(t, appts, 4)
	assert.Equal(t, "Mon, Jan 26", appts[0].Date)
	assert.Equal(t, "9:30 am", appts[0].Time)
	assert.Equal(t, "Mon, Jan 26 9:30 am", appts[0].DateTime)
	assert.Equal(t, "Dr. Michael Ayzin, DDS", appts[0].Target)
	assert.Equal(t, time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC), appts[0].CapturedAt)

	assert.Equal(t, "Unknown Date", appts[3].Date)
	assert.Equal(t, "11:00 am", appts[3].Time)
	assert.Equal(t, "Unknown Date 11:00 am", appts[3].DateTime)
}

func TestFindModalContainerFallbacks(t *testing.T) {
	s := newTestScraper(testConfig(t), &fakeLauncher{})

	t.Run("primary container", func(t *testing.T) {
		sel, err := s.findModalContainer(modalHTML)
		require.NoError(t, err)
		assert.Equal(t, 5, sel.Find(`a[data-test="availability-modal-timeslot"]`).Length())
	})

	t.Run("modal-content fallback", func(t *testing.T) {
		html := `<html><body><div data-test="modal-content">
			<a data-test="availability-modal-timeslot">9:30 am</a>
		</div></body></html>`
		sel, err := s.findModalContainer(html)
		require.NoError(t, err)
		assert.Equal(t, 1, sel.Find(`a[data-test="availability-modal-timeslot"]`).Length())
	})

	t.Run("whole page when slots exist anywhere", func(t *testing.T) {
		html := `<html><body><section>
			<a data-test="availability-modal-timeslot">9:30 am</a>
		</section></body></html>`
		sel, err := s.findModalContainer(html)
		require.NoError(t, err)
		assert.Equal(t, 1, sel.Find(`a[data-test="availability-modal-timeslot"]`).Length())
	})

	t.Run("nothing slot-like", func(t *testing.T) {
		_, err := s.findModalContainer(`<html><body><p>hello</p></body></html>`)
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindContainerNotFound))
	})
}

func TestMergeAppointments(t *testing.T) {
	base := []models.Appointment{
		{Date: "Mon, Jan 26", Time: "9:30 am"},
		{Date: "Mon, Jan 26", Time: "10:00 am"},
	}
	more := []models.Appointment{
		{Date: "Mon, Jan 26", Time: "9:30 am"},
		{Date: "Tue, Jan 27", Time: "9:30 am"},
	}

	merged, added := mergeAppointments(base, more)

	assert.Equal(t, 1, added)
	require.Len(t, merged, 3)
	assert.Equal(t, "Tue, Jan 27", merged[2].Date)
}

func TestExtractFromTriggerPaginates(t *testing.T) {
	page := &fakePage{
		content:       modalHTML,
		afterShowMore: modalHTMLExpanded,
		elements: map[string][]string{
			locKey(locTrigger):  {"View more availability"},
			locKey(locShowMore): {"Show more availability"},
		},
	}
	s := newTestScraper(testConfig(t), &fakeLauncher{})

	appts, err := s.extractFromTrigger(page, "Dr. Michael Ayzin, DDS", 0)

	require.NoError(t, err)
	// Four from the first view plus one new slot after "Show more"; the
	// repeated Mon 9:30 am is not double counted.
	assert.Len(t, appts, 5)
	assert.Contains(t, page.clicks, locKey(locShowMore)+"#0 force=false")
	// No close button on the page, so the modal is dismissed by key.
	assert.Contains(t, page.keys, "Escape")
}

func TestExtractFromTriggerMarkerMissStillExtracts(t *testing.T) {
	page := &fakePage{
		content:   modalHTML,
		markerErr: errors.New("timeout"),
		elements: map[string][]string{
			locKey(locTrigger): {"View more availability"},
		},
	}
	s := newTestScraper(testConfig(t), &fakeLauncher{})

	appts, err := s.extractFromTrigger(page, "Dr. Michael Ayzin, DDS", 0)

	require.NoError(t, err)
	assert.Len(t, appts, 4)
}

func TestProcessTriggerCountsFailures(t *testing.T) {
	page := &fakePage{
		normalClickErr: map[string]error{
			locKey(locTrigger): errors.New("detached node"),
		},
	}
	s := newTestScraper(testConfig(t), &fakeLauncher{})

	appts := s.processTrigger(page, "Dr. Michael Ayzin, DDS", 0)

	assert.Nil(t, appts)
	assert.Equal(t, 1, s.metrics.Errors)
}

func TestCloseModalPrefersCloseButton(t *testing.T) {
	page := &fakePage{
		elements: map[string][]string{
			locKey(locCloseButton): {""},
		},
	}
	s := newTestScraper(testConfig(t), &fakeLauncher{})

	s.closeModal(page)

	assert.Contains(t, page.clicks, locKey(locCloseButton)+"#0 force=false")
	assert.Empty(t, page.keys)
}
