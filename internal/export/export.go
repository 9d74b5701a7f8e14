// Package export produces the raw and cleaned CSV views of a run's
// appointment set.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

var columns = []string{"target", "date", "time", "datetime", "captured_at"}

// Writer saves appointment exports into a directory.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// WriteRaw saves the full appointment sequence, duplicates intact.
func (w *Writer) WriteRaw(appts []models.Appointment, timestamp string) (string, error) {
	path := filepath.Join(w.Dir, fmt.Sprintf("appointments_raw_%s.csv", timestamp))
	return path, w.write(path, appts)
}

// WriteCleaned saves the deduplicated view.
func (w *Writer) WriteCleaned(appts []models.Appointment, timestamp string) (string, error) {
	path := filepath.Join(w.Dir, fmt.Sprintf("appointments_cleaned_%s.csv", timestamp))
	return path, w.write(path, Dedupe(appts))
}

func (w *Writer) write(path string, appts []models.Appointment) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}
	data, err := MarshalCSV(appts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MarshalCSV renders appointments as CSV with the fixed column order
// [target, date, time, datetime, captured_at].
func MarshalCSV(appts []models.Appointment) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(columns); err != nil {
		return nil, err
	}
	for _, a := range appts {
		row := []string{a.Target, a.Date, a.Time, a.DateTime, a.CapturedAt.Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

// Dedupe returns the first-seen appointment for each (date, time) key,
// preserving the original relative order of kept entries. The target is
// not part of the key.
func Dedupe(appts []models.Appointment) []models.Appointment {
	seen := make(map[models.SlotKey]struct{}, len(appts))
	out := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if _, ok := seen[a.Key()]; ok {
			continue
		}
		seen[a.Key()] = struct{}{}
		out = append(out, a)
	}
	return out
}

// UniqueCount returns the number of distinct (date, time) pairs.
func UniqueCount(appts []models.Appointment) int {
	seen := make(map[models.SlotKey]struct{}, len(appts))
	for _, a := range appts {
		seen[a.Key()] = struct{}{}
	}
	return len(seen)
}
