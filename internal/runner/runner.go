// Package runner guards run execution process-wide: at most one scrape
// runs at a time, and new start requests are rejected, not queued.
package runner

import (
	"errors"
	"sync"

	"github.com/skoom21/zocdoc-scraper/internal/logger"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

// State of the single run slot.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// ErrAlreadyRunning is returned when a start request arrives while a
// run is active.
var ErrAlreadyRunning = errors.New("a scrape run is already in progress")

// RunFunc executes one scrape and returns its result along with the
// collected appointments.
type RunFunc func() (models.RunResult, []models.Appointment)

// Supervisor is the single-slot run guard. It retains the last result
// and, on success, the last run's appointments for the HTTP layer.
type Supervisor struct {
	mu           sync.Mutex
	state        State
	lastResult   *models.RunResult
	appointments []models.Appointment
	log          logger.Logger
}

func New(log logger.Logger) *Supervisor {
	return &Supervisor{state: StateIdle, log: log}
}

// TryStart launches run in the background. Returns ErrAlreadyRunning
// without side effects while a run is active.
func (s *Supervisor) TryStart(run RunFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return ErrAlreadyRunning
	}
	s.state = StateRunning

	go func() {
		s.log.Info("Starting scraper execution...")
		result, appts := run()

		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastResult = &result
		if result.Success {
			s.appointments = appts
			s.log.Infof("Stored %d appointments in memory", len(appts))
		} else {
			s.log.Errorf("Scraper failed: %s", result.Error)
		}
		s.state = StateCompleted
	}()
	return nil
}

// Running reports whether a run is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}

// State returns the current slot state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResult returns a copy of the last run's result, or nil before any
// run completed.
func (s *Supervisor) LastResult() *models.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return nil
	}
	result := *s.lastResult
	return &result
}

// Appointments returns a copy of the last successful run's appointments.
func (s *Supervisor) Appointments() []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}
