package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

// processTrigger opens the modal behind the index-th trigger, extracts
// its timeslots with single-shot pagination, and closes it. Failures
// are non-fatal to the run: they are logged, counted, and yield an
// empty result so the orchestrator can move to the next trigger.
func (s *Scraper) processTrigger(page browser.Page, target string, index int) []models.Appointment {
	appts, err := s.extractFromTrigger(page, target, index)
	if err != nil {
		s.log.Errorf("Modal processing failed: %v", err)
		s.metrics.Errors++
		return nil
	}
	return appts
}

func (s *Scraper) extractFromTrigger(page browser.Page, target string, index int) ([]models.Appointment, error) {
	s.log.Infof("Processing modal %d", index+1)

	// Triggers are re-located by the click itself; references from a
	// previous open/close cycle would be stale.
	if err := page.Click(locTrigger, index, false); err != nil {
		return nil, err
	}
	s.log.Debug("Modal opened, waiting for content...")
	s.sleep(s.waits.ModalOpen)

	s.log.Info("Waiting for appointment timeslots to load...")
	if err := page.WaitForMarker(markerTimeslot, s.waits.MarkerTimeout); err != nil {
		// Not fatal: extract whatever is present, which may be nothing.
		s.log.Warnf("Timeslots did not appear within timeout: %v", err)
		s.sleep(s.waits.MarkerMissGrace)
	} else {
		s.sleep(s.waits.PostMarkerRender)
		s.log.Debug("Timeslots loaded successfully")
	}

	html, err := page.Content()
	if err != nil {
		return nil, err
	}
	container, err := s.findModalContainer(html)
	if err != nil {
		return nil, err
	}
	appts := s.extractAppointments(container, target)

	appts = s.paginate(page, target, appts)
	s.closeModal(page)
	return appts, nil
}

// paginate performs the single-shot "Show more availability" expansion
// and merges the second batch, keeping only slots whose (date, time)
// key is new.
func (s *Scraper) paginate(page browser.Page, target string, appts []models.Appointment) []models.Appointment {
	visible, err := page.Visible(locShowMore, 0)
	if err != nil || !visible {
		s.log.Debug("No 'Show more' button or already showing all")
		return appts
	}

	s.log.Info("Loading more appointments...")
	if err := page.Click(locShowMore, 0, false); err != nil {
		s.log.Debugf("Show more click failed: %v", err)
		return appts
	}
	s.sleep(s.waits.ShowMore)

	html, err := page.Content()
	if err != nil {
		s.log.Debugf("Re-reading modal content failed: %v", err)
		return appts
	}
	container, err := s.findModalContainer(html)
	if err != nil {
		s.log.Debugf("Modal container gone after show more: %v", err)
		return appts
	}

	more := s.extractAppointments(container, target)
	merged, added := mergeAppointments(appts, more)
	s.log.Infof("Added %d new appointments after loading more", added)
	return merged
}

// findModalContainer parses the markup and locates the modal root:
// primary view container, then the broader modal-content marker, then
// the whole page when timeslot markers exist anywhere in it.
func (s *Scraper) findModalContainer(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.WrapError(models.KindDataExtraction, "parsing modal markup", err)
	}

	sel := doc.Find(`div[data-test="` + attrContainer + `"]`)
	if sel.Length() == 0 {
		s.log.Warn("Modal container not found, trying alternative")
		sel = doc.Find(`div[data-test="` + attrModal + `"]`)
	}
	if sel.Length() == 0 {
		if strings.Contains(html, attrTimeslot) {
			return doc.Selection, nil
		}
		return nil, models.NewError(models.KindContainerNotFound, "modal container not found in page")
	}
	return sel.First(), nil
}

// extractAppointments walks the container's timeslot entries. Each
// entry's trimmed text is the time label; the nearest ancestor date
// wrapper supplies the date label, else the sentinel. Entries with an
// empty time label are skipped.
func (s *Scraper) extractAppointments(container *goquery.Selection, target string) []models.Appointment {
	entries := container.Find(`a[data-test="` + attrTimeslot + `"]`)
	s.log.Infof("Found %d appointment timeslots", entries.Length())

	if entries.Length() == 0 {
		if html, err := goquery.OuterHtml(container); err == nil {
			s.saveHTMLArtifact(html, "empty_modal")
		}
		return nil
	}

	var appts []models.Appointment
	entries.Each(func(_ int, entry *goquery.Selection) {
		timeText := strings.TrimSpace(entry.Text())
		if timeText == "" {
			return
		}

		dateText := unknownDate
		wrapper := entry.Closest(`div[data-test="` + attrDateWrapper + `"]`)
		if wrapper.Length() > 0 {
			title := wrapper.Find(`div[data-test="` + attrDayTitle + `"]`)
			if title.Length() > 0 {
				if t := strings.TrimSpace(title.First().Text()); t != "" {
					dateText = t
				}
			}
		} else {
			s.log.Debugf("No date wrapper for timeslot: %s", timeText)
		}

		appts = append(appts, models.Appointment{
			Target:     target,
			Date:       dateText,
			Time:       timeText,
			DateTime:   dateText + " " + timeText,
			CapturedAt: s.now(),
		})
		s.log.Debugf("Extracted: %s - %s", dateText, timeText)
	})
	return appts
}

// mergeAppointments appends entries from more whose (date, time) key is
// not already present in base. Returns the merged slice and how many
// entries were added.
func mergeAppointments(base, more []models.Appointment) ([]models.Appointment, int) {
	seen := make(map[models.SlotKey]struct{}, len(base))
	for _, a := range base {
		seen[a.Key()] = struct{}{}
	}
	added := 0
	for _, a := range more {
		if _, ok := seen[a.Key()]; ok {
			continue
		}
		seen[a.Key()] = struct{}{}
		base = append(base, a)
		added++
	}
	return base, added
}

// closeModal dismisses the modal via its close button when visible,
// else with an Escape key. Close failures never affect the extracted
// appointments.
func (s *Scraper) closeModal(page browser.Page) {
	if visible, err := page.Visible(locCloseButton, 0); err == nil && visible {
		if err := page.Click(locCloseButton, 0, false); err == nil {
			s.sleep(s.waits.PostClose)
			return
		}
	}
	if err := page.SendKey("Escape"); err != nil {
		s.log.Warnf("Failed to close modal: %v", err)
	}
	s.sleep(s.waits.PostClose)
}
