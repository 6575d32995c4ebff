package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stellar/internal/planet"
	"stellar/internal/services"
)

type PlanetHandler struct {
	planets *services.PlanetService
	logger  *zap.Logger
}

func NewPlanetHandler(planets *services.PlanetService, logger *zap.Logger) *PlanetHandler {
	return &PlanetHandler{planets: planets, logger: logger}
}

// dateParam reads an optional YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (planet.Date, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return planet.Date{}, false, nil
	}
	d, err := planet.ParseDate(raw)
	return d, true, err
}

// State accepts target_date=YYYY-MM-DD and defaults to today.
func (h *PlanetHandler) State(w http.ResponseWriter, r *http.Request) {
	day, ok, err := dateParam(r, "target_date")
	if err != nil {
		http.Error(w, "invalid target_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !ok {
		day = h.planets.Today()
	}
	st, err := h.planets.State(r.Context(), userID(r), day)
	if err != nil {
		h.logger.Error("planet state", zap.Error(err))
		http.Error(w, "could not build planet state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// History covers the last days (default 30) ending today, or an explicit
// start_date/end_date range when both are given.
func (h *PlanetHandler) History(w http.ResponseWriter, r *http.Request) {
	start, hasStart, err := dateParam(r, "start_date")
	if err != nil {
		http.Error(w, "invalid start_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, hasEnd, err := dateParam(r, "end_date")
	if err != nil {
		http.Error(w, "invalid end_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var hist planet.History
	switch {
	case hasStart && hasEnd:
		if start.DaysUntil(end) > services.MaxHistoryDays {
			http.Error(w, "range must not exceed 365 days", http.StatusBadRequest)
			return
		}
		hist, err = h.planets.History(r.Context(), userID(r), start, end)
	case hasStart || hasEnd:
		http.Error(w, "start_date and end_date must be given together", http.StatusBadRequest)
		return
	default:
		days, ok := intParam(r, "days", services.DefaultHistoryDays)
		if !ok || days < 1 || days > services.MaxHistoryDays {
			http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
			return
		}
		hist, err = h.planets.RecentHistory(r.Context(), userID(r), days)
	}
	if err != nil {
		h.logger.Error("planet history", zap.Error(err))
		http.Error(w, "could not build planet history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (h *PlanetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.planets.Stats(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("planet stats", zap.Error(err))
		http.Error(w, "could not fetch stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
