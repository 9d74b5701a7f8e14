package scraper

import (
	"time"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/internal/export"
	"github.com/skoom21/zocdoc-scraper/internal/retry"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

// Run executes the scrape: one session per proxy attempt, the full
// target loop inside each session. Connection-class failures rotate to
// the next proxy endpoint; any other failure ends the run immediately,
// backups or not. All failures surface as a structured result.
func (s *Scraper) Run() models.RunResult {
	start := s.now()
	maxAttempts := s.proxies.MaxAttempts()
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint := s.proxies.EndpointFor(attempt)
		if attempt == 0 {
			s.log.Info("Launching browser with primary proxy...")
		} else {
			s.log.Info("Trying next proxy...")
		}

		session, err := s.launcher.Launch(browser.LaunchOptions{
			Headless:       s.cfg.Browser.Headless,
			Humanize:       s.cfg.Browser.Humanize,
			Proxy:          endpoint,
			ElementTimeout: s.cfg.Scraper.ElementTimeout,
		})
		if err != nil {
			lastErr = models.WrapError(models.KindConnection, "browser launch failed", err)
			s.log.Warnf("Proxy attempt %d/%d failed: %v", attempt+1, maxAttempts, lastErr)
			continue
		}

		err = s.scrapeAll(session)
		if closeErr := session.Close(); closeErr != nil {
			s.log.Warnf("Session close failed: %v", closeErr)
		}

		if err == nil {
			return s.finish(start, endpoint.Tier)
		}
		if models.IsKind(err, models.KindConnection) {
			lastErr = err
			s.log.Warnf("Proxy attempt %d/%d failed: %v", attempt+1, maxAttempts, err)
			continue
		}
		return s.fail(start, err)
	}

	s.log.Errorf("All %d proxy attempts failed", maxAttempts)
	return s.fail(start, lastErr)
}

// scrapeAll runs the whole target loop on one session.
func (s *Scraper) scrapeAll(session browser.Session) error {
	page, err := session.NewPage()
	if err != nil {
		return models.WrapError(models.KindConnection, "opening page", err)
	}

	runner := retry.Runner{
		MaxAttempts: s.cfg.Scraper.MaxRetries,
		BaseDelay:   s.cfg.Scraper.RetryDelay,
		Sleep:       s.sleep,
		OnRetry:     func() { s.metrics.Retries++ },
		Log:         s.log,
	}

	targets := s.cfg.Scraper.Targets
	for i, target := range targets {
		s.log.Infof("Processing provider %d/%d: %s", i+1, len(targets), target)

		err := runner.Do("load page", func() error {
			return s.loadPage(page, s.cfg.Scraper.TargetURL)
		})
		if err != nil {
			return s.failTarget(page, err)
		}

		err = runner.Do("select provider", func() error {
			return s.selectTarget(page, target)
		})
		if err != nil {
			return s.failTarget(page, err)
		}

		s.log.Info("Waiting for page to update after provider selection...")
		s.sleep(s.waits.PostSelectionUpdate)

		count, err := page.Count(locTrigger)
		if err != nil {
			return s.failTarget(page, models.WrapError(models.KindConnection, "enumerating availability triggers", err))
		}
		if count == 0 {
			// Recovered at the target level: log, keep artifacts, move on.
			s.log.Warnf("No 'View more availability' buttons found for %s", target)
			s.saveDebugArtifacts(page, artifactName("no_buttons", target))
			continue
		}
		s.log.Infof("Found %d 'View more availability' buttons for %s", count, target)

		for idx := 0; idx < count; idx++ {
			appts := s.processTrigger(page, target, idx)
			s.appointments = append(s.appointments, appts...)
		}
		s.log.Infof("Collected %d appointments for %s", s.countFor(target), target)

		if i < len(targets)-1 {
			s.log.Info("Loading page for next provider...")
			s.sleep(s.waits.NextTarget)
		}
	}

	s.metrics.AppointmentsFound = len(s.appointments)
	if len(s.appointments) == 0 {
		return s.failTarget(page, models.NewError(models.KindDataExtraction, "no appointments collected for any provider"))
	}
	return nil
}

// failTarget captures debug artifacts for non-connection failures that
// will end the run, including an empty collection at the end of the
// target loop; connection-class errors skip the capture since the
// session is about to be discarded anyway.
func (s *Scraper) failTarget(page browser.Page, err error) error {
	if !models.IsKind(err, models.KindConnection) {
		s.log.Errorf("Scraping error: %v", err)
		s.saveDebugArtifacts(page, "error")
	}
	return err
}

func (s *Scraper) countFor(target string) int {
	n := 0
	for _, a := range s.appointments {
		if a.Target == target {
			n++
		}
	}
	return n
}

func (s *Scraper) finish(start time.Time, proxyTier string) models.RunResult {
	writer := export.NewWriter(s.cfg.Output.Dir)
	timestamp := s.now().Format("20060102_150405")

	rawPath, err := writer.WriteRaw(s.appointments, timestamp)
	if err != nil {
		return s.fail(start, models.WrapError(models.KindDataExtraction, "failed to save raw results", err))
	}
	s.log.Infof("Saved raw data: %s (%d appointments)", rawPath, len(s.appointments))

	cleanPath, err := writer.WriteCleaned(s.appointments, timestamp)
	if err != nil {
		return s.fail(start, models.WrapError(models.KindDataExtraction, "failed to save cleaned results", err))
	}
	unique := export.UniqueCount(s.appointments)
	s.log.Infof("Saved cleaned data: %s (%d unique appointments)", cleanPath, unique)

	duration := s.now().Sub(start)
	s.logSummary(duration)

	return models.RunResult{
		Success:           true,
		AppointmentsCount: len(s.appointments),
		UniqueCount:       unique,
		RawFile:           rawPath,
		CleanedFile:       cleanPath,
		DurationSeconds:   duration.Seconds(),
		Metrics:           s.metrics,
		ProxyUsed:         proxyTier,
	}
}

func (s *Scraper) fail(start time.Time, err error) models.RunResult {
	duration := s.now().Sub(start)
	s.log.Errorf("Fatal error: %v", err)

	result := models.RunResult{
		Success:         false,
		DurationSeconds: duration.Seconds(),
		Metrics:         s.metrics,
	}
	if err != nil {
		result.Error = err.Error()
		result.ErrorKind = string(models.KindOf(err))
	}
	return result
}

func (s *Scraper) logSummary(duration time.Duration) {
	s.log.Info("================================================================================")
	s.log.Info("EXECUTION SUMMARY")
	s.log.Info("================================================================================")
	s.log.Infof("Execution Time: %.2f seconds", duration.Seconds())
	s.log.Infof("Appointments Found: %d", s.metrics.AppointmentsFound)
	s.log.Infof("Page Loads: %d", s.metrics.PageLoads)
	s.log.Infof("Retries: %d", s.metrics.Retries)
	s.log.Infof("Errors: %d", s.metrics.Errors)
	s.log.Info("================================================================================")
}
