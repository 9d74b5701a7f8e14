package models

import (
	"time"
)

// Appointment is a single extracted availability timeslot.
type Appointment struct {
	Target     string    `json:"target"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	DateTime   string    `json:"datetime"`
	CapturedAt time.Time `json:"captured_at"`
}

// SlotKey identifies a timeslot for deduplication. The target is
// deliberately not part of the key: two providers sharing an identical
// date/time pair count as one slot in the cleaned view.
type SlotKey struct {
	Date string
	Time string
}

// Key returns the deduplication key for the appointment.
func (a Appointment) Key() SlotKey {
	return SlotKey{Date: a.Date, Time: a.Time}
}

// Metrics holds the execution counters for a single run. Counters only
// increase; a run owns its Metrics exclusively.
type Metrics struct {
	PageLoads         int `json:"page_loads"`
	Retries           int `json:"retries"`
	Errors            int `json:"errors"`
	AppointmentsFound int `json:"appointments_found"`
}

// RunResult is the terminal outcome of a scrape run.
type RunResult struct {
	Success           bool    `json:"success"`
	AppointmentsCount int     `json:"appointments_count,omitempty"`
	UniqueCount       int     `json:"unique_count,omitempty"`
	RawFile           string  `json:"raw_file,omitempty"`
	CleanedFile       string  `json:"cleaned_file,omitempty"`
	DurationSeconds   float64 `json:"duration"`
	Metrics           Metrics `json:"metrics"`
	ProxyUsed         string  `json:"proxy_used,omitempty"`
	Error             string  `json:"error,omitempty"`
	ErrorKind         string  `json:"error_type,omitempty"`
}
