package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skoom21/zocdoc-scraper/internal/export"
	"github.com/skoom21/zocdoc-scraper/internal/logger"
	"github.com/skoom21/zocdoc-scraper/internal/runner"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

type handlers struct {
	log   logger.Logger
	sup   *runner.Supervisor
	start runner.RunFunc
}

// trigger starts a scrape run. Concurrent starts are rejected with a
// conflict status rather than queued.
func (h *handlers) trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.sup.TryStart(h.start); err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{
			"status":  "already_running",
			"message": "Scraper is already running. Please wait for completion.",
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "started",
		"message": "Scraper execution started",
	})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "zocdoc-scraper",
		"running": h.sup.Running(),
	})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running":     h.sup.Running(),
		"last_result": h.sup.LastResult(),
	})
}

func (h *handlers) results(w http.ResponseWriter, r *http.Request) {
	last := h.sup.LastResult()
	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "no_results",
			"message": "No scraper runs completed yet",
		})
		return
	}

	status := "failed"
	if last.Success {
		status = "success"
	}
	resp := map[string]any{
		"status": status,
		"result": resultWithAppointments{RunResult: *last, Appointments: h.sup.Appointments()},
	}
	writeJSON(w, http.StatusOK, resp)
}

type resultWithAppointments struct {
	models.RunResult
	Appointments []models.Appointment `json:"appointments,omitempty"`
}

func (h *handlers) appointments(w http.ResponseWriter, r *http.Request) {
	appts := h.sup.Appointments()
	if len(appts) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":       "no_appointments",
			"message":      "No appointments available. Run the scraper first.",
			"appointments": []models.Appointment{},
		})
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		data, err := export.MarshalCSV(appts)
		if err != nil {
			h.log.Errorf("CSV export failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"status": "error", "message": err.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename=appointments.csv`)
		_, _ = w.Write(data)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"count":        len(appts),
		"appointments": appts,
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
