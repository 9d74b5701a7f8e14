// Package scraper implements the resilient extraction orchestrator:
// proxy failover, retry with backoff, provider selection, and the
// paginated modal extraction pipeline.
package scraper

import (
	"time"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/internal/config"
	"github.com/skoom21/zocdoc-scraper/internal/logger"
	"github.com/skoom21/zocdoc-scraper/internal/proxy"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

// Scraper runs one extraction. Instances are single-use and
// single-threaded: one run owns the appointment sequence, the metrics,
// and the result exclusively.
type Scraper struct {
	cfg      *config.Config
	log      logger.Logger
	launcher browser.Launcher
	proxies  *proxy.Manager

	waits Waits
	sleep func(time.Duration)
	now   func() time.Time

	appointments []models.Appointment
	metrics      models.Metrics
}

func New(cfg *config.Config, log logger.Logger, launcher browser.Launcher) *Scraper {
	s := &Scraper{
		cfg:      cfg,
		log:      log,
		launcher: launcher,
		proxies:  proxy.NewManager(&cfg.Proxy, log),
		waits:    DefaultWaits(),
		sleep:    time.Sleep,
		now:      time.Now,
	}

	s.log.Info("================================================================================")
	s.log.Info("ZocDoc Appointment Scraper")
	s.log.Infof("Target URL: %s", cfg.Scraper.TargetURL)
	s.log.Infof("Target Providers: %d", len(cfg.Scraper.Targets))
	s.log.Infof("Proxy Enabled: %v", cfg.Proxy.Enabled)
	s.log.Infof("Headless Mode: %v", cfg.Browser.Headless)
	s.log.Info("================================================================================")

	return s
}

// Appointments returns the appointments collected so far, in discovery
// order.
func (s *Scraper) Appointments() []models.Appointment {
	return s.appointments
}

// Metrics returns the run's execution counters.
func (s *Scraper) Metrics() models.Metrics {
	return s.metrics
}
