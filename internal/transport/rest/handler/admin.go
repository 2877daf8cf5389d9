package handler

import (
	"cardclash/internal/model"
	"cardclash/internal/service"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// AdminHandler serves the game config and leaderboard endpoints
type AdminHandler struct {
	configSvc      *service.ConfigService
	leaderboardSvc *service.LeaderboardService
	logger         *zap.Logger
}

func NewAdminHandler(configSvc *service.ConfigService, leaderboardSvc *service.LeaderboardService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		configSvc:      configSvc,
		leaderboardSvc: leaderboardSvc,
		logger:         logger,
	}
}

// GetConfig handles GET /v1/admin/config
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configSvc.Get(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateConfig handles PUT /v1/admin/config
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req model.GameConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg, err := h.configSvc.Update(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Leaderboard handles GET /v1/leaderboard?top=N
func (h *AdminHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "top must be a number")
			return
		}
		limit = n
	}
	entries, err := h.leaderboardSvc.Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// ResetLeaderboard handles POST /v1/admin/leaderboard/reset
func (h *AdminHandler) ResetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if err := h.leaderboardSvc.Reset(r.Context()); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
