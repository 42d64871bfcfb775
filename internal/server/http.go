package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"LanderRescue/internal/game"
	"LanderRescue/internal/storage/sqlite"
)

/* ------------------------------- HTTP ------------------------------- */

func newMux(h *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(h, w, r)
	})
	mux.HandleFunc("GET /api/missions", h.handleMissions)
	mux.HandleFunc("GET /api/missions/{id}", h.handleMission)
	mux.HandleFunc("GET /api/results", h.handleResults)
	mux.HandleFunc("GET /api/results/{attemptID}", h.handleResult)
	mux.HandleFunc("GET /api/progression", h.handleProgression)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": h.Len()})
	})
	return mux
}

func (h *Hub) handleMissions(w http.ResponseWriter, r *http.Request) {
	out := make([]missionSummaryDTO, 0)
	for _, id := range game.MissionIDs() {
		cfg, err := game.GetMission(id)
		if err != nil {
			continue
		}
		out = append(out, h.missionSummary(cfg))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Hub) handleMission(w http.ResponseWriter, r *http.Request) {
	cfg, err := game.GetMission(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, game.NormalizeMissionConfig(cfg))
}

func (h *Hub) missionSummary(cfg *game.MissionConfig) missionSummaryDTO {
	norm := game.NormalizeMissionConfig(cfg)
	return missionSummaryDTO{
		ID:          cfg.ID,
		DisplayName: cfg.DisplayName,
		Category:    string(cfg.Category),
		Phases:      len(norm.Phases),
		Available:   h.ledger == nil || h.ledger.CanFly(cfg.ID),
	}
}

func (h *Hub) handleResults(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("result store disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.store.ListResults(r.Context(), r.URL.Query().Get("mission"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Hub) handleResult(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("result store disabled"))
		return
	}
	res, err := h.store.GetResult(r.Context(), r.PathValue("attemptID"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Hub) handleProgression(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("progression disabled"))
		return
	}
	writeJSON(w, http.StatusOK, h.ledger.View())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorDTO{Message: err.Error()})
}
